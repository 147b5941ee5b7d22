package ledger_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffcore/pkg/ledger"
)

func populatedLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l := ledger.New("cls-9", ledger.WithClock(fixedClock()))
	_, err := l.LogDecision(testDecision(0.9), "broker@example.com")
	require.NoError(t, err)
	_, err = l.LogDecision(testDecision(0.6), "broker@example.com")
	require.NoError(t, err)
	_, err = l.CompleteClassification("8471.30.00", 0.75, "broker@example.com")
	require.NoError(t, err)
	return l
}

func TestExportForLegalRecord(t *testing.T) {
	l := populatedLedger(t)

	export, err := l.ExportForLegalRecord()
	require.NoError(t, err)

	assert.Equal(t, ledger.ExportVersion, export.Version)
	assert.Equal(t, "cls-9", export.ClassificationID)
	assert.Len(t, export.Decisions, 2)
	assert.Len(t, export.AuditTrail, 3) // two decision events + completion
	assert.True(t, export.IntegrityOK)
	assert.Regexp(t, `^sha256:[0-9a-f]{64}$`, export.BundleHash)
}

func TestExport_PassesSchemaValidation(t *testing.T) {
	export, err := populatedLedger(t).ExportForLegalRecord()
	require.NoError(t, err)

	data, err := json.Marshal(export)
	require.NoError(t, err)
	assert.NoError(t, ledger.ValidateExport(data))
}

func TestValidateExport_RejectsMalformedBundle(t *testing.T) {
	export, err := populatedLedger(t).ExportForLegalRecord()
	require.NoError(t, err)
	export.BundleHash = "not-a-hash"

	data, err := json.Marshal(export)
	require.NoError(t, err)
	assert.ErrorContains(t, ledger.ValidateExport(data), "schema violation")
}

func TestCheckExportVersion(t *testing.T) {
	assert.NoError(t, ledger.CheckExportVersion("1.0.0"))
	assert.NoError(t, ledger.CheckExportVersion("1.4.2"))
	assert.ErrorContains(t, ledger.CheckExportVersion("2.0.0"), "not supported")
	assert.ErrorContains(t, ledger.CheckExportVersion("garbage"), "malformed")
}

func TestGenerateEvidencePack(t *testing.T) {
	pack, checksum, err := populatedLedger(t).GenerateEvidencePack()
	require.NoError(t, err)
	assert.Len(t, checksum, 64)

	r, err := zip.NewReader(bytes.NewReader(pack), int64(len(pack)))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range r.File {
		names[f.Name] = true
	}
	for _, want := range []string{"decisions.json", "audit_trail.json", "manifest.json", "README.txt"} {
		assert.True(t, names[want], "missing %s", want)
	}
}
