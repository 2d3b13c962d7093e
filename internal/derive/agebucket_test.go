package derive

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obs-infancia/sinanetl/internal/sinan"
)

func TestAgeBucket_CoversEveryChildAge(t *testing.T) {
	want := map[int]string{
		0: Bucket0to1, 1: Bucket0to1,
		2: Bucket2to5, 5: Bucket2to5,
		6: Bucket6to9, 9: Bucket6to9,
		10: Bucket10to13, 13: Bucket10to13,
		14: Bucket14to17, 17: Bucket14to17,
	}
	for _, label := range sinan.ChildAgeLabels {
		bucket := AgeBucket(label)
		assert.Contains(t, Buckets, bucket, "label %q must land in a bucket", label)
	}
	for age, bucket := range want {
		var label string
		switch {
		case age == 0:
			label = "menor de 01 ano"
		case age == 1:
			label = "01 ano"
		default:
			label = fmt.Sprintf("%02d anos", age)
		}
		assert.Equal(t, bucket, AgeBucket(label), "age %d", age)
	}
}

func TestAgeBucket_BoundariesAreDisjoint(t *testing.T) {
	// Each boundary age maps to exactly one side.
	assert.Equal(t, Bucket0to1, AgeBucket("01 ano"))
	assert.Equal(t, Bucket2to5, AgeBucket("02 anos"))
	assert.Equal(t, Bucket2to5, AgeBucket("05 anos"))
	assert.Equal(t, Bucket6to9, AgeBucket("06 anos"))
	assert.Equal(t, Bucket10to13, AgeBucket("10 anos"))
	assert.Equal(t, Bucket14to17, AgeBucket("14 anos"))
	assert.Equal(t, Bucket14to17, AgeBucket("17 anos"))
}

func TestAgeBucket_OutOfDomain(t *testing.T) {
	assert.Equal(t, sinan.NotInformed, AgeBucket("18 anos"))
	assert.Equal(t, sinan.NotInformed, AgeBucket("25 anos"))
	assert.Equal(t, sinan.NotInformed, AgeBucket(""))
	assert.Equal(t, sinan.NotInformed, AgeBucket("nan"))
	assert.Equal(t, sinan.NotInformed, AgeBucket("4005"), "raw codes are not ages")
	assert.Equal(t, sinan.NotInformed, AgeBucket("sem idade"))
}

func TestAgeBucket_TolerantForms(t *testing.T) {
	assert.Equal(t, Bucket2to5, AgeBucket("5 anos"), "unpadded form")
	assert.Equal(t, Bucket0to1, AgeBucket("1 ano"))
	assert.Equal(t, Bucket0to1, AgeBucket("MENOR DE 01 ANO"))
	assert.Equal(t, Bucket6to9, AgeBucket("  07 anos  "))
}
