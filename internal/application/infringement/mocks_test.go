package infringement

import (
	"context"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/mock"

	"github.com/BillWilson/pat-checker/internal/domain/patent"
	"github.com/BillWilson/pat-checker/internal/domain/product"
	"github.com/BillWilson/pat-checker/internal/domain/report"
	"github.com/BillWilson/pat-checker/internal/intelligence/reviewer"
)

type mockPatentRepo struct{ mock.Mock }

func (m *mockPatentRepo) Save(ctx context.Context, p *patent.Patent) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPatentRepo) FindByPublicationNumber(ctx context.Context, number string) (*patent.Patent, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patent.Patent), args.Error(1)
}

func (m *mockPatentRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) Create(ctx context.Context, p *product.Product) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductRepo) UpdateVector(ctx context.Context, id int64, v pgvector.Vector) error {
	return m.Called(ctx, id, v).Error(0)
}

func (m *mockProductRepo) NearestByCompany(ctx context.Context, company string, v pgvector.Vector, k int) ([]*product.Product, error) {
	args := m.Called(ctx, company, v, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *mockProductRepo) ListByCompany(ctx context.Context, company string) ([]*product.Product, error) {
	args := m.Called(ctx, company)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

type mockReportRepo struct{ mock.Mock }

func (m *mockReportRepo) Create(ctx context.Context, r *report.Report) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockReportRepo) List(ctx context.Context, limit, offset int) ([]*report.Report, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.Report), args.Error(1)
}

func (m *mockReportRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockEmbedder struct{ mock.Mock }

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type mockReviewer struct{ mock.Mock }

func (m *mockReviewer) Review(ctx context.Context, question string, products []*product.Product) (*reviewer.Result, error) {
	args := m.Called(ctx, question, products)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reviewer.Result), args.Error(1)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
