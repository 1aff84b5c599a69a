package mocks

import (
	"context"

	"campusapi/internal/kyc"
	"campusapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockKYCService struct {
	mock.Mock
}

func (m *MockKYCService) CreateRequest(ctx context.Context, req kyc.CreateKYCRequest) (*kyc.KYCResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kyc.KYCResponse), args.Error(1)
}

func (m *MockKYCService) FetchIDData(ctx context.Context, t kyc.IDCardType, req kyc.FetchIDCardRequest) (*kyc.FetchIDCardResponse, error) {
	args := m.Called(ctx, t, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kyc.FetchIDCardResponse), args.Error(1)
}

func (m *MockKYCService) AnalyzeIDCard(ctx context.Context, up service.IDCardUpload) (*service.IDCardResult, error) {
	args := m.Called(ctx, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IDCardResult), args.Error(1)
}
