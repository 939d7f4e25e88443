package entity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferralCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateReferralCode()
		require.NoError(t, err)
		assert.Len(t, code, ReferralCodeLength)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(referralCodeAlphabet, c), "caractere %q fora do alfabeto", c)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestCommission(t *testing.T) {
	a, err := NewAmbassador("u-1", "Carla", "carla@example.com", "", 10, time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(500), a.Commission(5000))
	assert.Equal(t, int64(333), CommissionFor(3333, 10), "arredonda para baixo")
	assert.Equal(t, int64(0), CommissionFor(5000, 0))
	assert.Equal(t, int64(0), CommissionFor(0, 10))
}

func TestValidatePayment(t *testing.T) {
	a := &Ambassador{PaymentPreference: PaymentPix}
	assert.Error(t, a.ValidatePayment())

	a.PixKey = "carla@example.com"
	assert.NoError(t, a.ValidatePayment())

	a.PaymentPreference = PaymentBankTransfer
	assert.Error(t, a.ValidatePayment())

	a.Bank = BankDetails{BankName: "Banco", Agency: "0001", Account: "12345-6"}
	assert.NoError(t, a.ValidatePayment())

	a.PaymentPreference = "boleto"
	assert.Error(t, a.ValidatePayment())
}

func TestNormalizeReferralCode(t *testing.T) {
	assert.Equal(t, "MEC7X2AB", NormalizeReferralCode("  mec7x2ab "))
}
