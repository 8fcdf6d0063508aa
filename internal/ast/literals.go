package ast

// IntegerLit is a signed integer literal.
type IntegerLit struct {
	BaseNode
	Value int64
}

func (l *IntegerLit) exprNode() {}

// UintLit is an explicitly unsigned integer literal (`12u`).
type UintLit struct {
	BaseNode
	Value uint64
}

func (l *UintLit) exprNode() {}

// FloatLit is a floating-point literal.
type FloatLit struct {
	BaseNode
	Value float64
}

func (l *FloatLit) exprNode() {}

// StringLit is a non-interpolated string literal, and also the type used
// for PropertyKey string keys (`{"a-b": 1}`) and import paths.
type StringLit struct {
	BaseNode
	Value string
}

func (l *StringLit) exprNode()        {}
func (l *StringLit) propertyKeyNode() {}

// BooleanLit is `true` or `false`.
type BooleanLit struct {
	BaseNode
	Value bool
}

func (l *BooleanLit) exprNode() {}

// DurationLit is a raw duration literal as scanned, e.g. "1y3mo2w1d4h1m30s".
// Folding into {months, nanoseconds, negative} happens in the converter.
type DurationLit struct {
	BaseNode
	Raw      string
	Negative bool
}

func (l *DurationLit) exprNode() {}

// DateTimeLit is an RFC3339 (or date-only) time literal.
type DateTimeLit struct {
	BaseNode
	Raw string
}

func (l *DateTimeLit) exprNode() {}

// RegexpLit is `/pattern/`.
type RegexpLit struct {
	BaseNode
	Value string
}

func (l *RegexpLit) exprNode() {}

// PipeLit is the bare `<-` placeholder used as a default value marking a
// required pipe parameter in a function literal's parameter list.
type PipeLit struct {
	BaseNode
}

func (l *PipeLit) exprNode() {}
