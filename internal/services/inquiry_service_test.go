package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	domain "github.com/anvi-leather/api/internal/domain"
)

type stubInquiryPublisher struct {
	messages []InquiryEventMessage
	err      error
}

func (p *stubInquiryPublisher) PublishInquiryEvent(_ context.Context, message InquiryEventMessage) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.messages = append(p.messages, message)
	return "msg-1", nil
}

func newTestInquiryService(t *testing.T, inquiries *stubInquiryRepo, products *stubProductRepo, publisher InquiryEventPublisher) InquiryService {
	t.Helper()
	counter := 0
	svc, err := NewInquiryService(InquiryServiceDeps{
		Inquiries: inquiries,
		Products:  products,
		Publisher: publisher,
		Clock:     func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) },
		IDGen: func() string {
			counter++
			return fmt.Sprintf("inq_%03d", counter)
		},
	})
	if err != nil {
		t.Fatalf("NewInquiryService: %v", err)
	}
	return svc
}

func TestSubmitInquiryStoresRecordAndPublishesEvent(t *testing.T) {
	inquiries := newStubInquiryRepo()
	products := newStubProductRepo(domain.Product{ID: "prod_1", Slug: "tote"})
	publisher := &stubInquiryPublisher{}
	svc := newTestInquiryService(t, inquiries, products, publisher)

	inquiry, err := svc.Submit(context.Background(), SubmitInquiryCommand{
		Name:      "Tran Thi B",
		Email:     "Buyer@Example.com",
		Company:   "Saigon Imports",
		ProductID: "prod_1",
		Quantity:  500,
		Content:   "We would like a quote for 500 tote bags.",
		Images:    []string{"https://cdn.example.com/uploads/a.jpg"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if inquiry.Status != domain.InquiryStatusNew {
		t.Fatalf("expected NEW status, got %s", inquiry.Status)
	}
	if inquiry.Email != "buyer@example.com" {
		t.Fatalf("expected lower-cased email, got %q", inquiry.Email)
	}
	if len(publisher.messages) != 1 || publisher.messages[0].Event != "inquiry.created" {
		t.Fatalf("expected inquiry.created event, got %+v", publisher.messages)
	}
	if _, ok := inquiries.items[inquiry.ID]; !ok {
		t.Fatalf("inquiry not stored")
	}
}

func TestSubmitInquiryValidation(t *testing.T) {
	svc := newTestInquiryService(t, newStubInquiryRepo(), newStubProductRepo(), nil)

	_, err := svc.Submit(context.Background(), SubmitInquiryCommand{
		Email:   "not-an-email",
		Content: "too short",
		Images: []string{
			"https://cdn.example.com/1.jpg",
			"https://cdn.example.com/2.jpg",
			"https://cdn.example.com/3.jpg",
			"https://cdn.example.com/4.jpg",
			"https://cdn.example.com/5.jpg",
			"https://cdn.example.com/6.jpg",
		},
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := map[string]bool{}
	for _, field := range validation.Fields {
		fields[field.Field] = true
	}
	for _, expected := range []string{"email", "content", "imageUrls"} {
		if !fields[expected] {
			t.Fatalf("expected field %q in %v", expected, validation.Fields)
		}
	}
}

func TestSubmitInquiryRejectsUnknownProduct(t *testing.T) {
	svc := newTestInquiryService(t, newStubInquiryRepo(), newStubProductRepo(), nil)

	_, err := svc.Submit(context.Background(), SubmitInquiryCommand{
		Email:     "buyer@example.com",
		Content:   "We would like a quote for tote bags.",
		ProductID: "prod_ghost",
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if validation.Fields[0].Field != "productId" {
		t.Fatalf("expected productId error, got %v", validation.Fields)
	}
}

func TestSubmitInquirySanitizesMarkup(t *testing.T) {
	inquiries := newStubInquiryRepo()
	svc := newTestInquiryService(t, inquiries, nil, nil)

	inquiry, err := svc.Submit(context.Background(), SubmitInquiryCommand{
		Name:    "<script>alert(1)</script>Binh",
		Email:   "buyer@example.com",
		Content: "Please quote <b>500 units</b> of the classic tote.",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if strings.Contains(inquiry.Name, "<") || strings.Contains(inquiry.Content, "<") {
		t.Fatalf("markup survived sanitisation: %q / %q", inquiry.Name, inquiry.Content)
	}
}

func TestSubmitInquirySurvivesPublisherFailure(t *testing.T) {
	inquiries := newStubInquiryRepo()
	publisher := &stubInquiryPublisher{err: errors.New("pubsub down")}
	svc := newTestInquiryService(t, inquiries, nil, publisher)

	inquiry, err := svc.Submit(context.Background(), SubmitInquiryCommand{
		Email:   "buyer@example.com",
		Content: "We would like a quote for tote bags.",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, ok := inquiries.items[inquiry.ID]; !ok {
		t.Fatalf("inquiry must be stored even when the event publish fails")
	}
}

func TestUpdateInquiryAllowsAnyStatusTransition(t *testing.T) {
	inquiries := newStubInquiryRepo(domain.CustomerInquiry{ID: "inq_1", Status: domain.InquiryStatusClosed})
	svc := newTestInquiryService(t, inquiries, nil, nil)

	status := string(domain.InquiryStatusNew)
	inquiry, err := svc.UpdateInquiry(context.Background(), superAdminPrincipal(), "inq_1", UpdateInquiryCommand{Status: &status})
	if err != nil {
		t.Fatalf("UpdateInquiry: %v", err)
	}
	if inquiry.Status != domain.InquiryStatusNew {
		t.Fatalf("expected NEW, got %s", inquiry.Status)
	}
}

func TestInquiryAdminAccessRules(t *testing.T) {
	inquiries := newStubInquiryRepo(domain.CustomerInquiry{ID: "inq_1", Status: domain.InquiryStatusNew})
	svc := newTestInquiryService(t, inquiries, nil, nil)

	// Both roles may read.
	if _, err := svc.GetInquiry(context.Background(), adminPrincipal(), "inq_1"); err != nil {
		t.Fatalf("GetInquiry as admin: %v", err)
	}
	// Only super admin may mutate.
	status := string(domain.InquiryStatusClosed)
	if _, err := svc.UpdateInquiry(context.Background(), adminPrincipal(), "inq_1", UpdateInquiryCommand{Status: &status}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.DeleteInquiry(context.Background(), adminPrincipal(), "inq_1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.ListInquiries(context.Background(), nil, InquiryListQuery{}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}
