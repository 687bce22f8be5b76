package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhonesAreValid(t *testing.T) {
	phones := Phones()
	assert.NotEmpty(t, phones)

	current := 0
	for _, p := range phones {
		assert.NotEmpty(t, p.Brand)
		assert.NotEmpty(t, p.Name)
		assert.Positive(t, p.YearStart)
		assert.True(t, strings.HasPrefix(p.ImagePath, "/phones/"), p.ImagePath)
		if p.YearEnd == nil {
			current++
			continue
		}
		assert.GreaterOrEqual(t, *p.YearEnd, p.YearStart, "%s %s", p.Brand, p.Name)
	}
	assert.Equal(t, 1, current)
}

func TestPhonesReturnsCopies(t *testing.T) {
	a := Phones()
	a[0].Name = "changed"

	b := Phones()
	assert.NotEqual(t, "changed", b[0].Name)
}
