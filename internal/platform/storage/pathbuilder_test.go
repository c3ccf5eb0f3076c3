package storage

import "testing"

func TestBuildInquiryImagePath(t *testing.T) {
	path, err := BuildObjectPath(PurposeInquiryImage, PathParams{
		UploadID: "upload789",
		FileName: "bag.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "uploads/inquiries/upload789/bag.png"
	if path != expected {
		t.Fatalf("expected %s, got %s", expected, path)
	}
}

func TestBuildProductImagePath(t *testing.T) {
	path, err := BuildObjectPath(PurposeProductImage, PathParams{
		ProductID: "prod123",
		FileName:  "front.jpg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "assets/products/prod123/front.jpg"
	if path != expected {
		t.Fatalf("expected %s, got %s", expected, path)
	}
}

func TestBuildObjectPathRejectsInvalidSegment(t *testing.T) {
	_, err := BuildObjectPath(PurposeInquiryImage, PathParams{
		UploadID: "../bad",
		FileName: "file.png",
	})
	if err == nil {
		t.Fatalf("expected error for invalid segment")
	}
	_, err = BuildObjectPath(PurposeInquiryImage, PathParams{
		UploadID: "upload",
		FileName: "a/../b.png",
	})
	if err == nil {
		t.Fatalf("expected error for traversal in file name")
	}
}
