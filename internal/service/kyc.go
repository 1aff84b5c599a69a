package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"campusapi/internal/kyc"
	"campusapi/internal/pkg/logger"
	"campusapi/internal/storage"
)

var (
	ErrKYCDisabled = errors.New("kyc integration is not configured")
	ErrReaderNil   = errors.New("reader is nil")
)

// archiveURLExpiry bounds how long the returned archive link stays valid.
const archiveURLExpiry = 15 * time.Minute

// KYCClient is the upstream identity-verification API.
type KYCClient interface {
	CreateRequest(ctx context.Context, req kyc.CreateKYCRequest) (*kyc.KYCResponse, error)
	FetchIDData(ctx context.Context, t kyc.IDCardType, req kyc.FetchIDCardRequest) (*kyc.FetchIDCardResponse, error)
	AnalyzeIDCard(ctx context.Context, front io.Reader, filename string, shouldVerify bool) (kyc.IDCardAnalysis, error)
}

// IDCardUpload is an identity card image received from a client.
type IDCardUpload struct {
	Reader       io.Reader
	Filename     string
	ContentType  string
	ShouldVerify bool
}

// IDCardResult is the analysis plus, when archiving is enabled, where the
// image was stored.
type IDCardResult struct {
	ArchiveKey string             `json:"archive_key,omitempty"`
	ArchiveURL string             `json:"archive_url,omitempty"`
	Analysis   kyc.IDCardAnalysis `json:"analysis"`
}

// KYCService forwards KYC requests upstream and archives card images.
type KYCService interface {
	CreateRequest(ctx context.Context, req kyc.CreateKYCRequest) (*kyc.KYCResponse, error)
	FetchIDData(ctx context.Context, t kyc.IDCardType, req kyc.FetchIDCardRequest) (*kyc.FetchIDCardResponse, error)
	// AnalyzeIDCard archives the image (if a store is configured), then
	// forwards it. The archive is removed again when forwarding fails.
	AnalyzeIDCard(ctx context.Context, up IDCardUpload) (*IDCardResult, error)
}

type kycService struct {
	client KYCClient
	store  storage.Storage
}

// NewKYCService wires the upstream client and the optional archive store.
// A nil client makes every call fail with ErrKYCDisabled.
func NewKYCService(client KYCClient, store storage.Storage) KYCService {
	return &kycService{client: client, store: store}
}

func (s *kycService) CreateRequest(ctx context.Context, req kyc.CreateKYCRequest) (*kyc.KYCResponse, error) {
	if s.client == nil {
		return nil, ErrKYCDisabled
	}
	return s.client.CreateRequest(ctx, req)
}

func (s *kycService) FetchIDData(ctx context.Context, t kyc.IDCardType, req kyc.FetchIDCardRequest) (*kyc.FetchIDCardResponse, error) {
	if s.client == nil {
		return nil, ErrKYCDisabled
	}
	return s.client.FetchIDData(ctx, t, req)
}

func (s *kycService) AnalyzeIDCard(ctx context.Context, up IDCardUpload) (*IDCardResult, error) {
	if s.client == nil {
		return nil, ErrKYCDisabled
	}
	if up.Reader == nil {
		return nil, ErrReaderNil
	}

	if s.store == nil {
		analysis, err := s.client.AnalyzeIDCard(ctx, up.Reader, up.Filename, up.ShouldVerify)
		if err != nil {
			return nil, fmt.Errorf("analyze id card: %w", err)
		}
		return &IDCardResult{Analysis: analysis}, nil
	}

	// The image goes to two places, so it is buffered once.
	data, err := io.ReadAll(up.Reader)
	if err != nil {
		return nil, fmt.Errorf("read id card: %w", err)
	}

	key := storage.NewObjectKey(storage.IDCardPrefix, up.Filename)
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	obj, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": up.Filename},
	})
	if err != nil {
		return nil, fmt.Errorf("archive id card: %w", err)
	}

	analysis, err := s.client.AnalyzeIDCard(ctx, bytes.NewReader(data), up.Filename, up.ShouldVerify)
	if err != nil {
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			return nil, fmt.Errorf("analyze id card: %w; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("analyze id card: %w", err)
	}

	res := &IDCardResult{ArchiveKey: obj.Key, Analysis: analysis}
	if u, err := s.store.PresignGet(ctx, obj.Key, archiveURLExpiry); err != nil {
		log := logger.WithComponent("kyc")
		log.Warn().Str("archive_key", obj.Key).Err(err).Msg("presign archive url failed")
	} else {
		res.ArchiveURL = u
	}
	return res, nil
}
