package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TDXM1001/zugou-rental/internal/model"
)

func TestGenerate(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	doc := model.LeaseDocument{
		Contract: model.Contract{
			ContractNumber: "CT20240101ABCDEF",
			SignedDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EffectiveDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			ExpiryDate:     time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			LeaseDuration:  12,
			MonthlyRent:    350000,
			Deposit:        700000,
			ManagementFee:  20000,
			PaymentMethod:  model.PaymentMonthly,
			PaymentDay:     5,
			Status:         model.ContractStatusActive,
			Terms:          model.JSONMap{"pets": "not allowed"},
			Notes:          "keys handed over on move-in",
		},
		Property: model.Property{Title: "Sunrise 2-1-501", Address: "5 Garden Road"},
		Landlord: model.User{ID: 10, Name: "Landlord Li"},
		Tenant:   model.User{ID: 20, Name: "Tenant Wang"},
	}

	content, err := generator.Generate(doc)
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}
