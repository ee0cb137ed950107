package services

import (
	"fmt"
	"mime/multipart"

	"github.com/piternoufi/quarry-orders-api/utils"
)

// DocumentService handles delivery-note document upload, retrieval, and deletion
type DocumentService interface {
	// UploadDeliveryNote validates and uploads a delivery-note scan, returns the storage key
	UploadDeliveryNote(fileHeader *multipart.FileHeader) (string, error)

	// GetDeliveryNoteURL generates a URL for accessing an uploaded delivery note
	GetDeliveryNoteURL(s3Key string) (string, error)

	// DeleteDeliveryNote removes a delivery note from storage
	DeleteDeliveryNote(s3Key string) error
}

// S3DocumentService implements DocumentService using AWS S3 for storage
type S3DocumentService struct {
	s3Service S3Interface
}

var documentServiceInstance DocumentService

// InitDocumentService initializes the document service with S3 backend
func InitDocumentService(s3Service S3Interface) DocumentService {
	documentServiceInstance = &S3DocumentService{
		s3Service: s3Service,
	}
	return documentServiceInstance
}

// GetDocumentService returns the initialized document service instance
func GetDocumentService() DocumentService {
	return documentServiceInstance
}

// SetDocumentService sets the document service instance (primarily for testing)
func SetDocumentService(service DocumentService) {
	documentServiceInstance = service
}

// UploadDeliveryNote validates and uploads a delivery-note scan to S3
func (s *S3DocumentService) UploadDeliveryNote(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateDeliveryNoteFile(fileHeader); err != nil {
		return "", err
	}

	s3Key, err := s.s3Service.UploadFile(fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload delivery note: %w", err)
	}

	return s3Key, nil
}

// GetDeliveryNoteURL generates a presigned URL for accessing a delivery note
func (s *S3DocumentService) GetDeliveryNoteURL(s3Key string) (string, error) {
	if s3Key == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(s3Key)
	if err != nil {
		return "", fmt.Errorf("failed to generate delivery note URL: %w", err)
	}

	return url, nil
}

// DeleteDeliveryNote deletes a delivery note from S3
func (s *S3DocumentService) DeleteDeliveryNote(s3Key string) error {
	if s3Key == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(s3Key); err != nil {
		return fmt.Errorf("failed to delete delivery note: %w", err)
	}

	return nil
}
