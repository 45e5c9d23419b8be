// file: validation/validation_test.go
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"athmageeth-portal/models"
)

func validInput() models.RegistrationInput {
	return models.RegistrationInput{
		InstitutionName: "ABC College",
		Place:           "Town",
		District:        "Kollam",
		Candidates: []models.CandidateInput{
			{Name: "Anu", IsLeader: true},
			{Name: "Biju"},
		},
		WhatsappNumber:      "9876543210",
		UnionOfficialNumber: "9876500000",
		PrincipalName:       "Dr. X",
		PrincipalPhone:      "9876511111",
		ReceiptURL:          "/r/1.webp",
	}
}

func fieldsOf(t *testing.T, err error) FieldErrors {
	t.Helper()
	var verr *Error
	require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
	require.NotEmpty(t, verr.Fields)
	return verr.Fields
}

func TestValidate_ValidPayload(t *testing.T) {
	out, err := New(WithReceiptRequired(true)).Validate(validInput())

	require.NoError(t, err)
	assert.Equal(t, validInput(), out)
}

func TestValidate_TrimsWhitespace(t *testing.T) {
	in := validInput()
	in.InstitutionName = "  ABC College  "
	in.Candidates[1].Name = " Biju\t"
	in.WhatsappNumber = " 9876543210 "

	out, err := New().Validate(in)

	require.NoError(t, err)
	assert.Equal(t, "ABC College", out.InstitutionName)
	assert.Equal(t, "Biju", out.Candidates[1].Name)
	assert.Equal(t, "9876543210", out.WhatsappNumber)
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.RegistrationInput)
		path     string
		messages []string
	}{
		{"short institution", func(in *models.RegistrationInput) { in.InstitutionName = "A" }, "institutionName", []string{"Institution Name is required."}},
		{"short place", func(in *models.RegistrationInput) { in.Place = "" }, "place", []string{"Place is required."}},
		{"missing district", func(in *models.RegistrationInput) { in.District = "" }, "district", []string{"District is required."}},
		{"unknown district", func(in *models.RegistrationInput) { in.District = "Gotham" }, "district", []string{"Please select a valid district."}},
		{"short candidate name", func(in *models.RegistrationInput) { in.Candidates[1].Name = "B" }, "candidates.1.name", []string{"Candidate Name is required."}},
		{"short whatsapp", func(in *models.RegistrationInput) { in.WhatsappNumber = "12345" }, "whatsappNumber", []string{"WhatsApp Number must be at least 10 digits."}},
		{"long whatsapp", func(in *models.RegistrationInput) { in.WhatsappNumber = "1234567890123456" }, "whatsappNumber", []string{"Number is too long."}},
		{"non-digit whatsapp", func(in *models.RegistrationInput) { in.WhatsappNumber = "98765-43210" }, "whatsappNumber", []string{"Number must contain only digits."}},
		{"signed union number", func(in *models.RegistrationInput) { in.UnionOfficialNumber = "+9876500000" }, "unionOfficialNumber", []string{"Number must contain only digits."}},
		{"short principal name", func(in *models.RegistrationInput) { in.PrincipalName = "X" }, "principalName", []string{"Principal Name is required."}},
		{"empty principal phone", func(in *models.RegistrationInput) { in.PrincipalPhone = "" }, "principalPhone", []string{"Principal Phone Number must be at least 10 digits.", "Number must contain only digits."}},
		{"short and lettered phone", func(in *models.RegistrationInput) { in.PrincipalPhone = "abc" }, "principalPhone", []string{"Principal Phone Number must be at least 10 digits.", "Number must contain only digits."}},
		{"long and lettered whatsapp", func(in *models.RegistrationInput) { in.WhatsappNumber = "1234567890123456x" }, "whatsappNumber", []string{"Number is too long.", "Number must contain only digits."}},
		{"too many candidates", func(in *models.RegistrationInput) {
			in.Candidates = []models.CandidateInput{
				{Name: "Aa", IsLeader: true}, {Name: "Bb"}, {Name: "Cc"}, {Name: "Dd"}, {Name: "Ee"}, {Name: "Ff"},
			}
		}, "candidates", []string{"Maximum 5 candidates allowed."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := New().Validate(in)

			fields := fieldsOf(t, err)
			assert.Equal(t, tt.messages, fields[tt.path])
		})
	}
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	in := validInput()
	in.InstitutionName = ""
	in.Place = ""
	in.PrincipalPhone = "abc"

	_, err := New().Validate(in)

	fields := fieldsOf(t, err)
	assert.Equal(t, FieldErrors{
		"institutionName": {"Institution Name is required."},
		"place":           {"Place is required."},
		"principalPhone": {
			"Principal Phone Number must be at least 10 digits.",
			"Number must contain only digits.",
		},
	}, fields)
}

func TestValidate_ItemsCheckedWhenArrayTooLong(t *testing.T) {
	in := validInput()
	in.Candidates = []models.CandidateInput{
		{Name: "Aa", IsLeader: true}, {Name: "Bb"}, {Name: "C"}, {Name: "Dd"}, {Name: "Ee"}, {Name: "F"},
	}

	_, err := New().Validate(in)

	fields := fieldsOf(t, err)
	assert.Equal(t, FieldErrors{
		"candidates":        {"Maximum 5 candidates allowed."},
		"candidates.2.name": {"Candidate Name is required."},
		"candidates.5.name": {"Candidate Name is required."},
	}, fields)
}

func TestValidate_ArrayRulesInOrder(t *testing.T) {
	in := validInput()
	in.Candidates = []models.CandidateInput{
		{Name: "Aa", IsLeader: true}, {Name: "Bb", IsLeader: true}, {Name: "Cc"}, {Name: "Dd"}, {Name: "Ee"}, {Name: "Ff"},
	}

	_, err := New().Validate(in)

	fields := fieldsOf(t, err)
	assert.Equal(t, []string{
		"Maximum 5 candidates allowed.",
		"Please select exactly one Team Leader.",
	}, fields["candidates"])
}

func TestValidate_LeaderRuleIsArrayLevel(t *testing.T) {
	t.Run("no leader", func(t *testing.T) {
		in := validInput()
		in.Candidates[0].IsLeader = false

		fields := fieldsOf(t, func() error { _, err := New().Validate(in); return err }())

		assert.Equal(t, []string{"Please select exactly one Team Leader."}, fields["candidates"])
		assert.NotContains(t, fields, "candidates.0")
		assert.NotContains(t, fields, "candidates.0.isLeader")
	})

	t.Run("two leaders", func(t *testing.T) {
		in := validInput()
		in.Candidates[1].IsLeader = true

		fields := fieldsOf(t, func() error { _, err := New().Validate(in); return err }())

		assert.Equal(t, []string{"Please select exactly one Team Leader."}, fields["candidates"])
	})

	t.Run("runs after item checks", func(t *testing.T) {
		in := validInput()
		in.Candidates[0].IsLeader = false
		in.Candidates[0].Name = "A"

		fields := fieldsOf(t, func() error { _, err := New().Validate(in); return err }())

		assert.Equal(t, []string{"Candidate Name is required."}, fields["candidates.0.name"])
		assert.Equal(t, []string{"Please select exactly one Team Leader."}, fields["candidates"])
	})

	t.Run("empty array", func(t *testing.T) {
		in := validInput()
		in.Candidates = nil

		fields := fieldsOf(t, func() error { _, err := New().Validate(in); return err }())

		assert.Equal(t, []string{
			"At least 1 candidate is required.",
			"Please select exactly one Team Leader.",
		}, fields["candidates"])
	})
}

func TestValidate_ReceiptPolicy(t *testing.T) {
	in := validInput()
	in.ReceiptURL = "   "

	_, err := New(WithReceiptRequired(true)).Validate(in)
	fields := fieldsOf(t, err)
	assert.Equal(t, []string{"Please upload the payment receipt."}, fields["receiptUrl"])

	_, err = New(WithReceiptRequired(false)).Validate(in)
	assert.NoError(t, err)
}

func TestError_Message(t *testing.T) {
	err := &Error{Fields: FieldErrors{"place": {"Place is required."}}}
	assert.Equal(t, "check the form for errors", err.Error())
}

func TestFromDecodeError(t *testing.T) {
	var in models.RegistrationInput
	err := json.Unmarshal([]byte(`{"institutionName": 42}`), &in)
	require.Error(t, err)

	verr := FromDecodeError([]byte(`{"institutionName": 42}`), err)
	assert.Equal(t, FieldErrors{"institutionName": {"Invalid value."}}, verr.Fields)

	verr = FromDecodeError([]byte(`{"institutionName": `), errors.New("unexpected EOF"))
	assert.Equal(t, FieldErrors{"form": {"The submission could not be read."}}, verr.Fields)
}

func TestFromDecodeError_IndexedPathsAndEveryField(t *testing.T) {
	body := []byte(`{
		"institutionName": 42,
		"place": "Town",
		"candidates": [{"name": "Anu", "isLeader": true}, {"name": 7, "isLeader": "yes"}, "Biju"],
		"principalPhone": 9876511111
	}`)
	var in models.RegistrationInput
	err := json.Unmarshal(body, &in)
	require.Error(t, err)

	verr := FromDecodeError(body, err)

	assert.Equal(t, FieldErrors{
		"institutionName":       {"Invalid value."},
		"candidates.1.name":     {"Invalid value."},
		"candidates.1.isLeader": {"Invalid value."},
		"candidates.2":          {"Invalid value."},
		"principalPhone":        {"Invalid value."},
	}, verr.Fields)
}

func TestFromDecodeError_CandidatesNotAnArray(t *testing.T) {
	body := []byte(`{"candidates": {"name": "Anu"}}`)
	var in models.RegistrationInput
	err := json.Unmarshal(body, &in)
	require.Error(t, err)

	assert.Equal(t, FieldErrors{"candidates": {"Invalid value."}}, FromDecodeError(body, err).Fields)
}

// ------------------- properties -------------------

func drawName(t *rapid.T, label string) string {
	return rapid.StringMatching(`[A-Za-z][A-Za-z .]{1,30}[A-Za-z]`).Draw(t, label)
}

func drawPhone(t *rapid.T, label string) string {
	return rapid.StringMatching(`[0-9]{10,15}`).Draw(t, label)
}

func drawCandidates(t *rapid.T, leaders int) []models.CandidateInput {
	n := rapid.IntRange(max(1, leaders), 5).Draw(t, "count")
	out := make([]models.CandidateInput, n)
	for i := range out {
		out[i] = models.CandidateInput{Name: drawName(t, fmt.Sprintf("candidate-%d", i))}
	}
	perm := rapid.Permutation(indexes(n)).Draw(t, "leaderOrder")
	for _, idx := range perm[:leaders] {
		out[idx].IsLeader = true
	}
	return out
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func drawInput(t *rapid.T, leaders int) models.RegistrationInput {
	return models.RegistrationInput{
		InstitutionName:     drawName(t, "institution"),
		Place:               drawName(t, "place"),
		District:            rapid.SampledFrom(models.Districts).Draw(t, "district"),
		Candidates:          drawCandidates(t, leaders),
		WhatsappNumber:      drawPhone(t, "whatsapp"),
		UnionOfficialNumber: drawPhone(t, "union"),
		PrincipalName:       drawName(t, "principal"),
		PrincipalPhone:      drawPhone(t, "principalPhone"),
		ReceiptURL:          "/uploads/receipts/" + rapid.StringMatching(`[a-z]{4,10}`).Draw(t, "receipt") + ".webp",
	}
}

func TestValidate_PropertyValidPayloadsPass(t *testing.T) {
	engine := New(WithReceiptRequired(true))
	rapid.Check(t, func(t *rapid.T) {
		in := drawInput(t, 1)

		out, err := engine.Validate(in)
		if err != nil {
			t.Fatalf("valid payload rejected: %v (%+v)", err, err)
		}
		if len(out.Candidates) != len(in.Candidates) {
			t.Fatalf("candidate count changed: %d -> %d", len(in.Candidates), len(out.Candidates))
		}
		for i := range in.Candidates {
			if out.Candidates[i] != in.Candidates[i] {
				t.Fatalf("candidate %d changed: %+v -> %+v", i, in.Candidates[i], out.Candidates[i])
			}
		}
	})
}

func TestValidate_PropertyLeaderCountOtherThanOneFails(t *testing.T) {
	engine := New()
	rapid.Check(t, func(t *rapid.T) {
		leaders := rapid.SampledFrom([]int{0, 2, 3}).Draw(t, "leaders")
		in := drawInput(t, leaders)

		_, err := engine.Validate(in)

		var verr *Error
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error for %d leaders, got %v", leaders, err)
		}
		msgs := strings.Join(verr.Fields["candidates"], "|")
		if !strings.Contains(msgs, "exactly one Team Leader") {
			t.Fatalf("missing array-level leader error, got %v", verr.Fields)
		}
	})
}
