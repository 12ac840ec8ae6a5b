package domain

type CommandType string

const (
	CmdSetSide           CommandType = "set_side"
	CmdSetUnitPrice      CommandType = "set_unit_price"
	CmdSetPositionAmount CommandType = "set_position_amount"
	CmdSetTotalValue     CommandType = "set_total_value"
	CmdEnable            CommandType = "enable"
	CmdDisable           CommandType = "disable"
	CmdToggle            CommandType = "toggle"
	CmdAddTarget         CommandType = "add_target"
	CmdDeleteTarget      CommandType = "delete_target"
	CmdChangeProfit      CommandType = "change_profit"
	CmdChangeTargetPrice CommandType = "change_target_price"
	CmdChangeAllocation  CommandType = "change_allocation"
	CmdCommitProfit      CommandType = "commit_profit"
	CmdCommitTargetPrice CommandType = "commit_target_price"
	CmdSubmit            CommandType = "submit"
)

// Command is a single mutation issued by the presentation layer.
type Command struct {
	Type     CommandType `json:"type" yaml:"type"`
	TargetID int         `json:"target_id,omitempty" yaml:"target_id"`
	Side     OrderSide   `json:"side,omitempty" yaml:"side"`
	Value    *float64    `json:"value" yaml:"value"` // nil clears a target field
}

// CommandResult carries the state after a command was applied.
// Accepted is the submit verdict; every other command reports true.
type CommandResult struct {
	Snapshot OrderFormSnapshot `json:"snapshot"`
	Accepted bool              `json:"accepted"`
}
