package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal      ErrorCode = "COMMON_001"
	ErrCodeValidation    ErrorCode = "COMMON_002"
	ErrCodeNotFound      ErrorCode = "COMMON_003"
	ErrCodeConflict      ErrorCode = "COMMON_004"
	ErrCodeSerialization ErrorCode = "COMMON_005"
)

// Calendar module error codes
const (
	// ErrCodeCalendarRange marks a date outside the supported Gregorian
	// range (before 1583, the computus validity floor).  Treated as a
	// programming error, never silently miscomputed.
	ErrCodeCalendarRange ErrorCode = "CAL_001"

	// ErrCodeCalendarScan marks a next-business-day scan that exceeded the
	// hard cap, indicating a misconfigured holiday calendar.
	ErrCodeCalendarScan ErrorCode = "CAL_002"

	// ErrCodeJurisdictionNotFound marks a jurisdiction code with no
	// registered calendar or service-extension table.
	ErrCodeJurisdictionNotFound ErrorCode = "CAL_003"

	// ErrCodeHolidayPattern marks an invalid holiday pattern definition.
	ErrCodeHolidayPattern ErrorCode = "CAL_004"
)

// Rule module error codes
const (
	// ErrCodeRuleSchema marks a malformed rule definition rejected at load
	// time, before any trigger touches it.
	ErrCodeRuleSchema ErrorCode = "RULE_001"

	// ErrCodeRuleNotFound marks a rule lookup by unknown trigger type.
	ErrCodeRuleNotFound ErrorCode = "RULE_002"

	// ErrCodeCycle marks a dependency cycle among deadline specs; the
	// whole rule is rejected because evaluation order cannot be determined.
	ErrCodeCycle ErrorCode = "RULE_003"

	// ErrCodeTriggerField marks a missing or malformed required trigger
	// context field.
	ErrCodeTriggerField ErrorCode = "RULE_004"

	// ErrCodeSpecInvalid marks a single malformed deadline spec; the spec
	// is skipped and siblings continue (partial-failure policy).
	ErrCodeSpecInvalid ErrorCode = "RULE_005"
)

// Short aliases used throughout the engine.
const (
	CodeInternal             = ErrCodeInternal
	CodeValidation           = ErrCodeValidation
	CodeNotFound             = ErrCodeNotFound
	CodeConflict             = ErrCodeConflict
	CodeSerialization        = ErrCodeSerialization
	CodeCalendarRange        = ErrCodeCalendarRange
	CodeCalendarScan         = ErrCodeCalendarScan
	CodeJurisdictionNotFound = ErrCodeJurisdictionNotFound
	CodeHolidayPattern       = ErrCodeHolidayPattern
	CodeRuleSchema           = ErrCodeRuleSchema
	CodeRuleNotFound         = ErrCodeRuleNotFound
	CodeCycle                = ErrCodeCycle
	CodeTriggerField         = ErrCodeTriggerField
	CodeSpecInvalid          = ErrCodeSpecInvalid

	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// codeDescriptions maps each code to a short operator-facing description,
// appended by CLI error rendering.
var codeDescriptions = map[ErrorCode]string{
	ErrCodeInternal:             "internal engine error",
	ErrCodeValidation:           "input validation failed",
	ErrCodeNotFound:             "entity not found",
	ErrCodeConflict:             "conflicting state",
	ErrCodeSerialization:        "serialization failed",
	ErrCodeCalendarRange:        "date outside supported calendar range",
	ErrCodeCalendarScan:         "business-day scan exceeded cap; holiday calendar misconfigured",
	ErrCodeJurisdictionNotFound: "unknown jurisdiction code",
	ErrCodeHolidayPattern:       "invalid holiday pattern",
	ErrCodeRuleSchema:           "malformed rule definition",
	ErrCodeRuleNotFound:         "no rule registered for trigger type",
	ErrCodeCycle:                "dependency cycle among deadline specs",
	ErrCodeTriggerField:         "missing or malformed trigger field",
	ErrCodeSpecInvalid:          "malformed deadline spec",
}

// Describe returns the operator-facing description for a code, or the code
// itself when no description is registered.
func Describe(code ErrorCode) string {
	if d, ok := codeDescriptions[code]; ok {
		return d
	}
	return code.String()
}
