package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowToVoter(t *testing.T) {
	cols := map[string]int{
		"SOS_VOTERID":          0,
		"FIRST_NAME":           1,
		"LAST_NAME":            2,
		"RESIDENTIAL_ADDRESS1": 3,
		"RESIDENTIAL_CITY":     4,
		"RESIDENTIAL_ZIP":      5,
		"DATE_OF_BIRTH":        6,
	}
	record := []string{"OH123", "Jane", "Doe", " 123 Main St ", "Columbus", "43215", "1980-02-01"}

	v := rowToVoter(cols, record)

	assert.Equal(t, "OH123", v.SOSVoterID)
	assert.Equal(t, "123 Main St", v.ResidentialAddress1)
	assert.Equal(t, "OH", v.ResidentialState, "state defaults when the column is absent")

	// Derived search fields use the query normalizer.
	assert.Equal(t, "123 main st", v.AddressNormalized)
	assert.NotEmpty(t, v.AddressTrigrams)
	assert.NotEmpty(t, v.LastNameTrigrams)

	require.NotNil(t, v.DateOfBirth)
	assert.Equal(t, 1980, v.DateOfBirth.Year())
}

func TestRowToVoterShortRecord(t *testing.T) {
	cols := map[string]int{"RESIDENTIAL_ADDRESS1": 0, "LAST_NAME": 5}
	v := rowToVoter(cols, []string{"9 Oak Ave"})
	assert.Equal(t, "9 Oak Ave", v.ResidentialAddress1)
	assert.Empty(t, v.LastName)
}

func TestParseDate(t *testing.T) {
	assert.Nil(t, parseDate(""))
	assert.Nil(t, parseDate("not-a-date"))
	require.NotNil(t, parseDate("02/01/1980"))
	require.NotNil(t, parseDate("1980-02-01"))
}
