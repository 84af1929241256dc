package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		from, to AccountType
		want     Classification
	}{
		{"cash to bank", AccountTypeAktiv, AccountTypeAktiv, Aktivtausch},
		{"payable to loan", AccountTypePassiv, AccountTypePassiv, Passivtausch},
		{"loan paid out to bank", AccountTypePassiv, AccountTypeAktiv, Bilanzverlaengerung},
		{"bank repays loan", AccountTypeAktiv, AccountTypePassiv, Bilanzverkuerzung},
		{"bank pays rent", AccountTypeAktiv, AccountTypeAufwand, Erfolgswirksam},
		{"revenue to bank", AccountTypeErtrag, AccountTypeAktiv, Erfolgswirksam},
		{"revenue to liability", AccountTypeErtrag, AccountTypePassiv, Erfolgswirksam},
		{"expense to revenue", AccountTypeAufwand, AccountTypeErtrag, Erfolgswirksam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.from, tt.to))
		})
	}
}
