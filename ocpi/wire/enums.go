package wire

type Status string

const (
	StatusUnknown   Status = "UNKNOWN"
	StatusAvailable Status = "AVAILABLE"
	StatusOccupied  Status = "OCCUPIED"
	StatusCharging  Status = "CHARGING"
	StatusFaulted   Status = "FAULTED"
	StatusRemoved   Status = "REMOVED"
)

// statusPriority is the fixed total order used when folding connector
// statuses into one EVSE status; the highest priority present wins.
var statusPriority = map[Status]int{
	StatusUnknown:   0,
	StatusAvailable: 1,
	StatusOccupied:  2,
	StatusCharging:  3,
	StatusFaulted:   4,
}

func (s Status) Priority() int {
	return statusPriority[s]
}

const (
	AllowedAllowed    = "ALLOWED"
	AllowedBlocked    = "BLOCKED"
	AllowedExpired    = "EXPIRED"
	AllowedNotAllowed = "NOT_ALLOWED"
)

const (
	SessionPending   = "PENDING"
	SessionActive    = "ACTIVE"
	SessionCompleted = "COMPLETED"
)

const (
	AuthMethodRequest = "AUTH_REQUEST"
	DimensionEnergy   = "ENERGY"
	DimensionParkTime = "PARKING_TIME"
	TokenTypeRfid     = "RFID"
	WhitelistAllowed  = "ALLOWED"
	WhitelistNever    = "NEVER"
)

// connector status reported by the station subsystem, keyed by the internal
// status string; anything not listed maps to the unknown sentinel.
var wireStatusTable = map[string]Status{
	"Available":     StatusAvailable,
	"Preparing":     StatusOccupied,
	"Reserved":      StatusOccupied,
	"SuspendedEV":   StatusOccupied,
	"SuspendedEVSE": StatusOccupied,
	"Finishing":     StatusOccupied,
	"Occupied":      StatusOccupied,
	"Charging":      StatusCharging,
	"Faulted":       StatusFaulted,
	"Unavailable":   StatusFaulted,
}

func ToWireStatus(internal string) Status {
	if s, ok := wireStatusTable[internal]; ok {
		return s
	}
	return StatusUnknown
}

var internalStatusTable = map[Status]string{
	StatusAvailable: "Available",
	StatusOccupied:  "Preparing",
	StatusCharging:  "Charging",
	StatusFaulted:   "Faulted",
}

func FromWireStatus(s Status) string {
	if internal, ok := internalStatusTable[s]; ok {
		return internal
	}
	return TypeUnknown
}

// Bidirectional connector standard tables. Unmapped wire standards fall back
// to the internal unknown bucket; unmapped internal types are published in the
// catalogued domestic bucket.
var toWireStandardTable = map[string]string{
	"Type1":    "IEC_62196_T1",
	"Type2":    "IEC_62196_T2",
	"CCS1":     "IEC_62196_T1_COMBO",
	"CCS2":     "IEC_62196_T2_COMBO",
	"CHAdeMO":  "CHADEMO",
	"Domestic": "DOMESTIC_F",
}

var fromWireStandardTable = map[string]string{
	"IEC_62196_T1":       "Type1",
	"IEC_62196_T2":       "Type2",
	"IEC_62196_T1_COMBO": "CCS1",
	"IEC_62196_T2_COMBO": "CCS2",
	"CHADEMO":            "CHAdeMO",
	"DOMESTIC_F":         "Domestic",
}

const (
	StandardDomestic = "DOMESTIC_F"
	TypeUnknown      = "Unknown"
)

func ToWireStandard(internalType string) string {
	if s, ok := toWireStandardTable[internalType]; ok {
		return s
	}
	return StandardDomestic
}

func FromWireStandard(standard string) string {
	if t, ok := fromWireStandardTable[standard]; ok {
		return t
	}
	return TypeUnknown
}

var toWirePowerTypeTable = map[string]string{
	"AC1": "AC_1_PHASE",
	"AC3": "AC_3_PHASE",
	"DC":  "DC",
}

var fromWirePowerTypeTable = map[string]string{
	"AC_1_PHASE": "AC1",
	"AC_3_PHASE": "AC3",
	"DC":         "DC",
}

func ToWirePowerType(internalType string) string {
	if s, ok := toWirePowerTypeTable[internalType]; ok {
		return s
	}
	return "AC_1_PHASE"
}

func FromWirePowerType(powerType string) string {
	if t, ok := fromWirePowerTypeTable[powerType]; ok {
		return t
	}
	return TypeUnknown
}

var toWireFormatTable = map[string]string{
	"socket": "SOCKET",
	"cable":  "CABLE",
}

func ToWireFormat(format string) string {
	if f, ok := toWireFormatTable[format]; ok {
		return f
	}
	return "SOCKET"
}

func FromWireFormat(format string) string {
	for internal, wire := range toWireFormatTable {
		if wire == format {
			return internal
		}
	}
	return "socket"
}
