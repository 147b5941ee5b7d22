package ledger

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"github.com/clearfreight/tariffcore/pkg/canonicalize"
)

// ExportVersion is the current legal-record snapshot format version.
const ExportVersion = "1.0.0"

// supportedExports accepts any 1.x snapshot on import.
var supportedExports = mustConstraint("^1.0")

func mustConstraint(c string) *semver.Constraints {
	parsed, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return parsed
}

// LegalRecordExport is a versioned snapshot bundling decisions, audit trail
// and summary for external legal review.
type LegalRecordExport struct {
	ExportID         string        `json:"export_id"`
	Version          string        `json:"version"`
	ClassificationID string        `json:"classification_id"`
	ExportedAt       time.Time     `json:"exported_at"`
	Decisions        []Decision    `json:"decisions"`
	AuditTrail       []*AuditEntry `json:"audit_trail"`
	Summary          LegalSummary  `json:"summary"`
	IntegrityOK      bool          `json:"integrity_ok"`
	BundleHash       string        `json:"bundle_hash"`
}

// ExportForLegalRecord produces the versioned snapshot. The bundle hash binds
// the decisions and audit trail; IntegrityOK records the verification result
// at export time.
func (l *Ledger) ExportForLegalRecord() (*LegalRecordExport, error) {
	export := &LegalRecordExport{
		ExportID:         uuid.New().String(),
		Version:          ExportVersion,
		ClassificationID: l.classificationID,
		ExportedAt:       l.clock().UTC(),
		Decisions:        l.Decisions(),
		AuditTrail:       l.AuditTrail(),
		Summary:          l.GenerateLegalSummary(),
		IntegrityOK:      l.VerifyIntegrity(),
	}

	hash, err := canonicalize.PrefixedHash(struct {
		Decisions  []Decision    `json:"decisions"`
		AuditTrail []*AuditEntry `json:"audit_trail"`
	}{export.Decisions, export.AuditTrail})
	if err != nil {
		return nil, fmt.Errorf("ledger: hash export bundle: %w", err)
	}
	export.BundleHash = hash
	return export, nil
}

// CheckExportVersion reports whether a snapshot version can be imported by
// this build.
func CheckExportVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("ledger: malformed export version %q: %w", version, err)
	}
	if !supportedExports.Check(v) {
		return fmt.Errorf("ledger: export version %s is not supported (want %s)", version, "^1.0")
	}
	return nil
}

// GenerateEvidencePack renders the legal-record export as a zip archive:
// decisions.json, audit_trail.json, manifest.json and a README. Returns the
// archive bytes and its sha256 checksum.
func (l *Ledger) GenerateEvidencePack() ([]byte, string, error) {
	export, err := l.ExportForLegalRecord()
	if err != nil {
		return nil, "", err
	}

	decisionsJSON, err := json.MarshalIndent(export.Decisions, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("ledger: marshal decisions: %w", err)
	}
	trailJSON, err := json.MarshalIndent(export.AuditTrail, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("ledger: marshal audit trail: %w", err)
	}

	manifest := map[string]interface{}{
		"export_id":         export.ExportID,
		"version":           export.Version,
		"classification_id": export.ClassificationID,
		"exported_at":       export.ExportedAt,
		"decision_count":    len(export.Decisions),
		"audit_entry_count": len(export.AuditTrail),
		"bundle_hash":       export.BundleHash,
		"integrity_ok":      export.IntegrityOK,
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("ledger: marshal manifest: %w", err)
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	files := []struct {
		name string
		data []byte
	}{
		{"decisions.json", decisionsJSON},
		{"audit_trail.json", trailJSON},
		{"manifest.json", manifestJSON},
	}
	for _, f := range files {
		zf, err := w.Create(f.name)
		if err != nil {
			return nil, "", fmt.Errorf("ledger: create %s: %w", f.name, err)
		}
		if _, err := zf.Write(f.data); err != nil {
			return nil, "", fmt.Errorf("ledger: write %s: %w", f.name, err)
		}
	}

	readme, err := w.Create("README.txt")
	if err != nil {
		return nil, "", err
	}
	_, _ = fmt.Fprintf(readme,
		"Legal evidence pack for classification %s\nExport %s, format version %s\nGenerated at %s\n",
		export.ClassificationID, export.ExportID, export.Version,
		export.ExportedAt.Format(time.RFC3339))

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("ledger: close archive: %w", err)
	}

	zipBytes := buf.Bytes()
	return zipBytes, canonicalize.HashBytes(zipBytes), nil
}
