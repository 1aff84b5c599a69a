package mocks

import (
	"context"
	"io"

	"campusapi/internal/kyc"
	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateRequest(ctx context.Context, req kyc.CreateKYCRequest) (*kyc.KYCResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kyc.KYCResponse), args.Error(1)
}

func (m *MockClient) FetchIDData(ctx context.Context, t kyc.IDCardType, req kyc.FetchIDCardRequest) (*kyc.FetchIDCardResponse, error) {
	args := m.Called(ctx, t, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kyc.FetchIDCardResponse), args.Error(1)
}

func (m *MockClient) AnalyzeIDCard(ctx context.Context, front io.Reader, filename string, shouldVerify bool) (kyc.IDCardAnalysis, error) {
	args := m.Called(ctx, front, filename, shouldVerify)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(kyc.IDCardAnalysis), args.Error(1)
}
