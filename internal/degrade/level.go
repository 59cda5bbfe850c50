package degrade

// Level is the ordinal severity of the parameter reduction applied to
// recover from a failure. Recovery escalates one level per attempt;
// Emergency means nothing further can be traded away.
type Level int

const (
	LevelNone Level = iota
	LevelMinimal
	LevelModerate
	LevelSignificant
	LevelEmergency
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelMinimal:
		return "minimal"
	case LevelModerate:
		return "moderate"
	case LevelSignificant:
		return "significant"
	case LevelEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// Next returns the following level, saturating at Emergency.
func (l Level) Next() Level {
	if l >= LevelEmergency {
		return LevelEmergency
	}
	return l + 1
}
