package domain

import "time"

// InquiryStatus tracks how far an inquiry has been handled. Transitions are
// unordered: operators may move an inquiry between any two statuses.
type InquiryStatus string

const (
	// InquiryStatusNew is the status of every freshly submitted inquiry.
	InquiryStatusNew InquiryStatus = "NEW"
	// InquiryStatusInProgress marks an inquiry someone is working on.
	InquiryStatusInProgress InquiryStatus = "IN_PROGRESS"
	// InquiryStatusResolved marks an inquiry that received an answer.
	InquiryStatusResolved InquiryStatus = "RESOLVED"
	// InquiryStatusClosed marks a finished inquiry.
	InquiryStatusClosed InquiryStatus = "CLOSED"
)

// InquiryStatuses lists every accepted inquiry status.
var InquiryStatuses = []InquiryStatus{
	InquiryStatusNew,
	InquiryStatusInProgress,
	InquiryStatusResolved,
	InquiryStatusClosed,
}

// MaxInquiryImages caps the number of image attachments per inquiry.
const MaxInquiryImages = 5

// CustomerInquiry is a quote request submitted from the public site.
type CustomerInquiry struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Company   string
	Country   string
	ProductID string
	Quantity  int
	Content   string
	Images    []string
	Status    InquiryStatus
	AdminNote string
	CreatedAt time.Time
	UpdatedAt time.Time
}
