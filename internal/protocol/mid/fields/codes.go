package fields

// parameterNames resolves a Data Field parameterID to a human-readable
// name. This is illustrative, not the full Open Protocol parameter
// catalog (out of scope); it covers the parameters this module's MID
// codecs actually read.
var parameterNames = map[string]string{
	"02213": "Trace step - angle/torque reciprocal scale",
	"02214": "Trace step - angle/torque direct scale",
	"02020": "Torque target",
	"02021": "Torque min limit",
	"02022": "Torque max limit",
	"02120": "Angle target",
	"02500": "Tightening status",
	"02504": "Torque status",
}

// unitNames resolves a Data Field unit code to a human-readable name.
var unitNames = map[int]string{
	1:   "Nm",
	2:   "lbf.in",
	3:   "lbf.ft",
	10:  "degrees",
	200: "seconds",
	201: "minutes",
	202: "milliseconds",
	203: "hours",
}

// ParameterName looks up the human-readable name for a parameterID,
// returning the parameterID itself when it is not in the table.
func ParameterName(parameterID string) string {
	if name, ok := parameterNames[parameterID]; ok {
		return name
	}
	return parameterID
}

// UnitName looks up the human-readable name for a unit code, returning an
// empty string when it is not in the table.
func UnitName(unit int) string {
	return unitNames[unit]
}
