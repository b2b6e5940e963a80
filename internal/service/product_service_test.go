package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"belekbox/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_ListAvailable(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	testProducts := []model.Product{
		{ID: 1, Name: "Winter box", Price: 1500, IsAvailable: true, CreatedAt: time.Now()},
		{ID: 2, Name: "Mini box", Price: 450, IsAvailable: true, SortOrder: 1, CreatedAt: time.Now()},
	}

	tests := []struct {
		name        string
		mockReturn  []model.Product
		mockError   error
		expected    []model.Product
		expectError bool
	}{
		{
			name:       "Success",
			mockReturn: testProducts,
			expected:   testProducts,
		},
		{
			name:       "No products returns empty slice",
			mockReturn: nil,
			expected:   []model.Product{},
		},
		{
			name:        "Repository error",
			mockError:   errors.New("database error"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := NewProductService(mockRepo, logger)

			if tt.mockReturn == nil {
				mockRepo.On("ListAvailable", ctx).Return(nil, tt.mockError)
			} else {
				mockRepo.On("ListAvailable", ctx).Return(tt.mockReturn, tt.mockError)
			}

			products, err := service.ListAvailable(ctx)

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, products)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, products)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
