package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareKey_Equivalence(t *testing.T) {
	// All spellings of the same name must share one lookup key.
	key := CompareKey("Allende")
	assert.Equal(t, key, CompareKey("allende"))
	assert.Equal(t, key, CompareKey(" Allende "))
	assert.Equal(t, key, CompareKey("ALLENDE"))
}

func TestCompareKey_DistinctNamesStayDistinct(t *testing.T) {
	assert.NotEqual(t, CompareKey("NWA 869"), CompareKey("NWA 869 b"))
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Asuka 09004", CleanName("Asuka 09004 *"))
	assert.Equal(t, "Asuka 09004", CleanName("**Asuka 09004**"))
	assert.Equal(t, "Hoba", CleanName("Hoba"))
	assert.Equal(t, "", CleanName(" ** "))
}

func TestCleanName_DoesNotLowercase(t *testing.T) {
	// Display cleanup and the comparison key are separate operations.
	assert.Equal(t, "Hoba", CleanName("Hoba*"))
	assert.NotEqual(t, CompareKey("Hoba"), CleanName("Hoba"))
}
