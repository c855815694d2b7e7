package scopedid

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOrg = uuid.MustParse("00000010-0000-0000-0001-000000000010")

func TestEncode_LiteralScenarios(t *testing.T) {
	id, err := Tasks.Encode(testOrg, 1)
	require.NoError(t, err)
	assert.Equal(t, "00000010-0000-0000-0001-000000000001", id.String())

	id, err = Tasks.Encode(testOrg, 123456789012)
	require.NoError(t, err)
	assert.Equal(t, "00000010-0000-0000-0001-123456789012", id.String())

	n, err := Tasks.Decode(uuid.MustParse("00000010-0000-0000-0001-000000000123"))
	require.NoError(t, err)
	assert.Equal(t, int64(123), n)
}

func TestEncode_DistinctOrganizations(t *testing.T) {
	orgA := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	orgB := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	a, err := Features.Encode(orgA, 1)
	require.NoError(t, err)
	b, err := Features.Encode(orgB, 1)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, "11111111-2222-3333-4444-000000000001", a.String())
	assert.Equal(t, "aaaaaaaa-bbbb-cccc-dddd-000000000001", b.String())
}

func TestEncode_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		ok    bool
	}{
		{"negative", -1, false},
		{"zero", 0, false},
		{"min", MinSequence, true},
		{"max", MaxSequence, true},
		{"max plus one", MaxSequence + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Tasks.Encode(testOrg, tt.value)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, IsInvalidSequenceNumber(err))
				assert.Equal(t, uuid.Nil, id)

				var rangeErr *InvalidSequenceNumberError
				require.ErrorAs(t, err, &rangeErr)
				assert.Equal(t, tt.value, rangeErr.Value)
				assert.Equal(t, MinSequence, rangeErr.Min)
				assert.Equal(t, MaxSequence, rangeErr.Max)
				assert.Equal(t, PrefixOf(testOrg), rangeErr.Namespace)
				assert.Equal(t, KindTask, rangeErr.Kind)
				return
			}

			require.NoError(t, err)
			n, err := Tasks.Decode(id)
			require.NoError(t, err)
			assert.Equal(t, tt.value, n)
		})
	}
}

func TestRoundTripAndPrefix(t *testing.T) {
	orgs := []uuid.UUID{
		testOrg,
		uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff"),
		uuid.New(),
		uuid.New(),
	}
	numbers := []int64{1, 2, 9, 10, 99, 100, 4096, 1_000_000, 123456789012, MaxSequence - 1, MaxSequence}

	for _, org := range orgs {
		for _, n := range numbers {
			id, err := Tasks.Encode(org, n)
			require.NoError(t, err)

			got, err := Tasks.Decode(id)
			require.NoError(t, err)
			assert.Equal(t, n, got)

			assert.Equal(t, PrefixOf(org), PrefixOf(id))
			assert.True(t, strings.HasPrefix(id.String(), string(PrefixOf(org))+"-"))
			assert.True(t, Tasks.Owns(org, id))
		}
	}
}

func TestEncode_InjectiveForFixedOrganization(t *testing.T) {
	seen := make(map[uuid.UUID]int64)
	for n := int64(1); n <= 5000; n++ {
		id, err := Tasks.Encode(testOrg, n)
		require.NoError(t, err)
		prev, dup := seen[id]
		require.False(t, dup, "numbers %d and %d collide on %s", prev, n, id)
		seen[id] = n
	}
}

func TestDecode_Strict(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"hex letters in sequence group", "00000010-0000-0000-0001-00000000abcd"},
		{"random uuid", "6ba7b810-9dad-41d1-80b4-00c04fd430c8"},
		{"zero sequence", "00000010-0000-0000-0001-000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tasks.Decode(uuid.MustParse(tt.id))
			require.Error(t, err)
			assert.True(t, IsMalformed(err))

			var malformed *MalformedIdentifierError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.id, malformed.ID)
		})
	}
}

func TestDecodeLenient(t *testing.T) {
	n, err := Tasks.DecodeLenient(uuid.MustParse("00000010-0000-0000-0001-000000000000"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = Tasks.DecodeLenient(uuid.MustParse("00000010-0000-0000-0001-000000000042"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = Tasks.DecodeLenient(uuid.MustParse("00000010-0000-0000-0001-00000000abcd"))
	assert.True(t, IsMalformed(err))
}

func TestOwns(t *testing.T) {
	other := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	id, err := Tasks.Encode(testOrg, 7)
	require.NoError(t, err)

	assert.True(t, Tasks.Owns(testOrg, id))
	assert.False(t, Tasks.Owns(other, id))

	hexOrg := uuid.MustParse("11111111-2222-3333-4444-55555555abcd")
	assert.False(t, Tasks.Owns(hexOrg, hexOrg))
}

func TestStringHelpers(t *testing.T) {
	s, err := Features.EncodeString("00000010-0000-0000-0001-000000000010", 5)
	require.NoError(t, err)
	assert.Equal(t, "00000010-0000-0000-0001-000000000005", s)

	n, err := Features.DecodeString(s)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = Features.EncodeString("not-a-uuid", 1)
	assert.Error(t, err)

	_, err = Features.DecodeString("not-a-uuid")
	assert.True(t, IsMalformed(err))
}

func TestParseKindAndFor(t *testing.T) {
	k, err := ParseKind(" Task ")
	require.NoError(t, err)
	assert.Equal(t, KindTask, k)

	_, err = ParseKind("sprint")
	assert.Error(t, err)

	c, err := For(KindFeature)
	require.NoError(t, err)
	assert.Equal(t, KindFeature, c.Kind())

	_, err = For(Kind("sprint"))
	assert.Error(t, err)
}

func TestCodec_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := int64(1); i <= 200; i++ {
				n := int64(w)*1000 + i
				id, err := Tasks.Encode(testOrg, n)
				if !assert.NoError(t, err) {
					return
				}
				got, err := Tasks.Decode(id)
				assert.NoError(t, err)
				assert.Equal(t, n, got)
			}
		}(w)
	}
	wg.Wait()
}
