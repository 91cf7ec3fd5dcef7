package expr

// Operator classifies the root of an expression.
type Operator int

const (
	Unknown Operator = iota
	Constant
	Variable

	Addition
	Subtraction
	Multiplication
	Division
	Modulus

	UnaryMinus
	Not

	// Integer conversions truncate their operand to the target type.
	ConvertToInt8
	ConvertToInt16
	ConvertToInt32
	ConvertToInt64
	ConvertToUint8
	ConvertToUint16
	ConvertToUint32
	ConvertToUint64

	And
	Or

	Equal
	NotEqual
	LessThan
	LessEqual
	GreaterThan
	GreaterEqual
)

var operatorSymbols = map[Operator]string{
	Unknown:        "?",
	Constant:       "const",
	Variable:       "var",
	Addition:       "+",
	Subtraction:    "-",
	Multiplication: "*",
	Division:       "/",
	Modulus:        "%",
	UnaryMinus:     "-",
	Not:            "!",
	ConvertToInt8:   "int8",
	ConvertToInt16:  "int16",
	ConvertToInt32:  "int32",
	ConvertToInt64:  "int64",
	ConvertToUint8:  "uint8",
	ConvertToUint16: "uint16",
	ConvertToUint32: "uint32",
	ConvertToUint64: "uint64",
	And:            "&&",
	Or:             "||",
	Equal:          "==",
	NotEqual:       "!=",
	LessThan:       "<",
	LessEqual:      "<=",
	GreaterThan:    ">",
	GreaterEqual:   ">=",
}

func (op Operator) String() string {
	if s, ok := operatorSymbols[op]; ok {
		return s
	}
	return "?"
}

// IsUnary is true for operators with a single operand.
func (op Operator) IsUnary() bool {
	switch op {
	case UnaryMinus, Not:
		return true
	}
	return op.IsConversion()
}

type width struct {
	bits   uint
	signed bool
}

var conversions = map[Operator]width{
	ConvertToInt8:   {8, true},
	ConvertToInt16:  {16, true},
	ConvertToInt32:  {32, true},
	ConvertToInt64:  {64, true},
	ConvertToUint8:  {8, false},
	ConvertToUint16: {16, false},
	ConvertToUint32: {32, false},
	ConvertToUint64: {64, false},
}

// IsConversion is true for the integer conversions.
func (op Operator) IsConversion() bool {
	_, ok := conversions[op]
	return ok
}

// Conversion returns the width and signedness of the target type of an
// integer conversion.
func (op Operator) Conversion() (bits uint, signed bool, ok bool) {
	w, ok := conversions[op]
	return w.bits, w.signed, ok
}

// ConversionTo returns the conversion to the integer type with the given
// width and signedness.
func ConversionTo(bits uint, signed bool) (Operator, bool) {
	for op, w := range conversions {
		if w == (width{bits, signed}) {
			return op, true
		}
	}
	return Unknown, false
}

// IsBinary is true for operators with two operands.
func (op Operator) IsBinary() bool {
	switch op {
	case Addition, Subtraction, Multiplication, Division, Modulus,
		And, Or,
		Equal, NotEqual, LessThan, LessEqual, GreaterThan, GreaterEqual:
		return true
	}
	return false
}

// IsComparison is true for the six relational operators.
func (op Operator) IsComparison() bool {
	switch op {
	case Equal, NotEqual, LessThan, LessEqual, GreaterThan, GreaterEqual:
		return true
	}
	return false
}

// IsBoolean is true for operators producing a truth value.
func (op Operator) IsBoolean() bool {
	return op.IsComparison() || op == And || op == Or || op == Not
}

// Negate returns the comparison holding exactly when op does not.
// Non-comparisons are returned unchanged.
//
//	==  <-> !=
//	<   <-> >=
//	<=  <-> >
func (op Operator) Negate() Operator {
	switch op {
	case Equal:
		return NotEqual
	case NotEqual:
		return Equal
	case LessThan:
		return GreaterEqual
	case GreaterEqual:
		return LessThan
	case LessEqual:
		return GreaterThan
	case GreaterThan:
		return LessEqual
	}
	return op
}
