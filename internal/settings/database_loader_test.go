package settings

import (
	"context"
	"errors"
	"testing"

	"hirdavat/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSettingsRepository struct {
	mock.Mock
}

func (m *mockSettingsRepository) GetShippingTiers(ctx context.Context) ([]model.PriceTier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PriceTier), args.Error(1)
}

func (m *mockSettingsRepository) GetFreeShippingThreshold(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockSettingsRepository) ReplaceShippingTiers(ctx context.Context, tiers []model.PriceTier) error {
	return m.Called(ctx, tiers).Error(0)
}

func (m *mockSettingsRepository) SetFreeShippingThreshold(ctx context.Context, threshold decimal.Decimal) error {
	return m.Called(ctx, threshold).Error(0)
}

func TestDatabaseLoader_Load(t *testing.T) {
	tiers := []model.PriceTier{{MaxWeight: decimal.NewFromInt(1), Price: decimal.NewFromInt(65)}}

	tests := []struct {
		name     string
		setup    func(m *mockSettingsRepository)
		errMatch string
	}{
		{
			name: "Success",
			setup: func(m *mockSettingsRepository) {
				m.On("GetShippingTiers", mock.Anything).Return(tiers, nil)
				m.On("GetFreeShippingThreshold", mock.Anything).Return(decimal.NewFromInt(1500), nil)
			},
		},
		{
			name: "Tier query fails",
			setup: func(m *mockSettingsRepository) {
				m.On("GetShippingTiers", mock.Anything).Return(nil, errors.New("connection refused"))
			},
			errMatch: "failed to load shipping tiers",
		},
		{
			name: "Threshold query fails",
			setup: func(m *mockSettingsRepository) {
				m.On("GetShippingTiers", mock.Anything).Return(tiers, nil)
				m.On("GetFreeShippingThreshold", mock.Anything).Return(decimal.Zero, errors.New("timeout"))
			},
			errMatch: "failed to load free shipping threshold",
		},
		{
			name: "Stored tier is invalid",
			setup: func(m *mockSettingsRepository) {
				m.On("GetShippingTiers", mock.Anything).Return([]model.PriceTier{{MaxWeight: decimal.Zero, Price: decimal.NewFromInt(1)}}, nil)
				m.On("GetFreeShippingThreshold", mock.Anything).Return(decimal.Zero, nil)
			},
			errMatch: "invalid stored settings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockSettingsRepository)
			tt.setup(repo)

			s, err := NewDatabaseLoader(repo, zerolog.Nop()).Load(context.Background())

			if tt.errMatch != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tiers, s.Tiers)
			assert.Equal(t, "1500", s.FreeShippingThreshold.String())
			repo.AssertExpectations(t)
		})
	}
}
