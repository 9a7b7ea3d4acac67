package domain

// ObjectiveType is the period an objective is evaluated over.
type ObjectiveType string

const (
	ObjectiveMonthly ObjectiveType = "monthly"
	ObjectiveYearly  ObjectiveType = "yearly"
)

// ObjectiveSource is the figure an objective is measured against.
type ObjectiveSource string

const (
	SourceExpenses    ObjectiveSource = "expenses"
	SourceEarnings    ObjectiveSource = "earnings"
	SourceSavingsRate ObjectiveSource = "savings_rate"
	SourceBalance     ObjectiveSource = "balance"
)

// ObjectiveOperator compares the source figure with the objective amount.
type ObjectiveOperator string

const (
	OperatorMin ObjectiveOperator = "min"
	OperatorMax ObjectiveOperator = "max"
)

// Objective is a savings or spending goal.
type Objective struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	Type     ObjectiveType     `json:"type"`
	Source   ObjectiveSource   `json:"source"`
	Operator ObjectiveOperator `json:"operator"`
	Amount   Money             `json:"amount"`
}

func (o Objective) RecordID() int           { return o.ID }
func (o Objective) WithID(id int) Objective { o.ID = id; return o }

// ParseObjectiveType validates an objective type string.
func ParseObjectiveType(s string) (ObjectiveType, error) {
	switch t := ObjectiveType(s); t {
	case ObjectiveMonthly, ObjectiveYearly:
		return t, nil
	}
	return "", Errorf("invalid objective type %q", s)
}

// ParseObjectiveSource validates an objective source string.
func ParseObjectiveSource(s string) (ObjectiveSource, error) {
	switch src := ObjectiveSource(s); src {
	case SourceExpenses, SourceEarnings, SourceSavingsRate, SourceBalance:
		return src, nil
	}
	return "", Errorf("invalid objective source %q", s)
}

// ParseObjectiveOperator validates an objective operator string.
func ParseObjectiveOperator(s string) (ObjectiveOperator, error) {
	switch op := ObjectiveOperator(s); op {
	case OperatorMin, OperatorMax:
		return op, nil
	}
	return "", Errorf("invalid objective operator %q", s)
}

// Validate checks the enum fields of the objective.
func (o Objective) Validate() error {
	if _, err := ParseObjectiveType(string(o.Type)); err != nil {
		return err
	}
	if _, err := ParseObjectiveSource(string(o.Source)); err != nil {
		return err
	}
	if _, err := ParseObjectiveOperator(string(o.Operator)); err != nil {
		return err
	}
	return nil
}
