package bot

import (
	"time"

	"github.com/m3rciful/trustbot/internal/store"
)

// node is a position inside a flow.
type node string

const (
	nodeIdle          node = "idle"
	nodeAwaitForward  node = "await_forward"
	nodeAwaitTargetID node = "await_target_id"
	nodeSelectField   node = "select_field"
	nodeAwaitValue    node = "await_field_value"
	nodeAwaitQuery    node = "await_query"
)

// flow is the multi-step operation a session belongs to.
type flow string

const (
	flowNewReport      flow = "new_report"
	flowEditReport     flow = "edit_report"
	flowDeleteReport   flow = "delete_report"
	flowAddOperator    flow = "add_operator"
	flowRemoveOperator flow = "remove_operator"
	flowSearch         flow = "search"
)

// session is the per-conversation state. The zero value is idle.
type session struct {
	Node     node
	Flow     flow
	ReportID int64
	Field    store.Field
	IssuedAt time.Time
}

func (s session) idle() bool {
	return s.Node == "" || s.Node == nodeIdle
}

// at returns s moved to n with the rest of the state kept.
func (s session) at(n node) session {
	s.Node = n
	return s
}

var idle = session{Node: nodeIdle}
