package normalisers

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

var classifyNow = time.Date(2025, 10, 16, 12, 0, 0, 0, time.UTC)

func TestClassifyOrgNumber(t *testing.T) {
	tests := []struct {
		input     string
		wantType  domain.CustomerType
		wantBirth string
	}{
		{"850312-1234", domain.CustomerPrivate, "1985-03-12"},
		{"050101-4321", domain.CustomerPrivate, "2005-01-01"},
		{"251016-0000", domain.CustomerPrivate, "2025-10-16"},
		{"251017-0000", domain.CustomerPrivate, "1925-10-17"},
		{"000229-1111", domain.CustomerPrivate, "2000-02-29"},
		{"851332-1234", domain.CustomerCompany, ""},
		{"850230-1234", domain.CustomerCompany, ""},
		{"556677-8899", domain.CustomerCompany, ""},
		{"5566778899", domain.CustomerCompany, ""},
		{"19850312-1234", domain.CustomerCompany, ""},
		{"", domain.CustomerCompany, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ct, birth := ClassifyOrgNumber(tt.input, classifyNow)
			assert.Equal(t, tt.wantType, ct)
			if tt.wantBirth == "" {
				assert.Nil(t, birth)
				return
			}
			require.NotNil(t, birth)
			assert.Equal(t, tt.wantBirth, birth.Format("2006-01-02"))
		})
	}
}

// Every decodable personal number yields an age in [0, 99].
func TestClassifyOrgNumber_AgeBounds(t *testing.T) {
	for yy := 0; yy < 100; yy++ {
		for _, mmdd := range []string{"0101", "0615", "1016", "1017", "1231"} {
			in := fmt.Sprintf("%02d%s-1234", yy, mmdd)
			ct, birth := ClassifyOrgNumber(in, classifyNow)
			if ct != domain.CustomerPrivate {
				assert.Nil(t, birth)
				continue
			}
			require.NotNil(t, birth, in)
			age := ageAt(*birth, classifyNow)
			assert.GreaterOrEqual(t, age, 0, in)
			assert.LessOrEqual(t, age, 99, in)
		}
	}
}
