package docket

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/praxis-legal/docketcalc/pkg/errors"
)

// ServiceExtension is one service-method extension entry: extra days
// granted because of how a document was served, with its governing
// citation for the audit trail.
type ServiceExtension struct {
	Days     int    `yaml:"days"`
	Citation string `yaml:"citation,omitempty"`
}

// ExtensionTable maps jurisdiction code → service method → extension.
// Loaded once and treated as an immutable value; unknown methods resolve
// to a zero extension rather than an error, because a deadline must still
// compute — the degradation is surfaced in the audit trail instead.
type ExtensionTable map[string]map[string]ServiceExtension

// RollCitations maps jurisdiction code → the citation governing the
// roll-to-next-business-day rule, quoted in roll adjustments.
type RollCitations map[string]string

// Lookup resolves the extension for a jurisdiction and service method.
// known is false when either key is absent; the caller reports the
// degradation and applies zero days.
func (t ExtensionTable) Lookup(jurisdiction, method string) (ext ServiceExtension, known bool) {
	methods, ok := t[jurisdiction]
	if !ok {
		return ServiceExtension{}, false
	}
	ext, ok = methods[method]
	return ext, ok
}

// Built-in service methods.
const (
	ServicePersonal   = "personal"
	ServiceMail       = "mail"
	ServiceElectronic = "electronic"
)

// DefaultExtensionTable returns the built-in state and federal extension
// tables.  State courts grant +5 days for mail and nothing for personal or
// electronic service; federal courts grant +3 for both mail and electronic
// service.
func DefaultExtensionTable() ExtensionTable {
	return ExtensionTable{
		"state": {
			ServicePersonal:   {Days: 0, Citation: "CCP § 415.10"},
			ServiceMail:       {Days: 5, Citation: "CCP § 1013(a)"},
			ServiceElectronic: {Days: 0, Citation: "CCP § 1010.6"},
		},
		"federal": {
			ServicePersonal:   {Days: 0, Citation: "FRCP 5(b)(2)(A)"},
			ServiceMail:       {Days: 3, Citation: "FRCP 6(d)"},
			ServiceElectronic: {Days: 3, Citation: "FRCP 6(d)"},
		},
	}
}

// DefaultRollCitations returns the built-in roll-rule citations.
func DefaultRollCitations() RollCitations {
	return RollCitations{
		"state":   "CCP § 12a",
		"federal": "FRCP 6(a)(1)(C)",
	}
}

// ExtensionDocument is the YAML form of a complete extension configuration,
// replacing the built-in tables wholesale when loaded:
//
//	extensions:
//	  state:
//	    mail: {days: 5, citation: "CCP § 1013(a)"}
//	roll_citations:
//	  state: "CCP § 12a"
type ExtensionDocument struct {
	Extensions    ExtensionTable `yaml:"extensions"`
	RollCitations RollCitations  `yaml:"roll_citations"`
}

// LoadExtensionFile reads an ExtensionDocument from a YAML file.
func LoadExtensionFile(path string) (ExtensionTable, RollCitations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "reading extension file "+path)
	}
	var doc ExtensionDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeValidation, "parsing extension file "+path)
	}
	if len(doc.Extensions) == 0 {
		return nil, nil, errors.Validation("extension file defines no jurisdictions").WithDetail(path)
	}
	return doc.Extensions, doc.RollCitations, nil
}
