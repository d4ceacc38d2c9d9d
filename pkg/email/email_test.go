package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	got, ok := Normalize(" Finance <Finance@Company.com> ")
	assert.True(t, ok)
	assert.Equal(t, "finance@company.com", got)

	_, ok = Normalize("not-an-address")
	assert.False(t, ok)
}

func TestNormalizeAll(t *testing.T) {
	out, invalid := NormalizeAll([]string{"a@x.com", "A@X.com", "bad", "b@x.com"})
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, out)
	assert.Equal(t, []string{"bad"}, invalid)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Customer Service", DisplayName("customer.service@company.com"))
	assert.Equal(t, "Finance", DisplayName("finance@company.com"))
	assert.Equal(t, "Team", DisplayName("---@company.com"))
}
