package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
	// PlayerID resumes an existing player; empty joins as a new one.
	PlayerID string `json:"player_id,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	PlayerID        string       `json:"player_id"`
	Resumed         bool         `json:"resumed,omitempty"`
	RecipesDigest   string       `json:"recipes_digest"`
	Tuning          ServerParams `json:"tuning"`
}

type ServerParams struct {
	MaxPlayers int      `json:"max_players"`
	Capacities []int    `json:"capacities"`
	ViewTitle  string   `json:"view_title"`
	Recipes    []string `json:"recipes"`
}

// ACT kinds.
const (
	ActSelect   = "select"
	ActInteract = "interact"
	ActMove     = "move"
	ActClose    = "close"
	ActCraft    = "craft"
)

// ACT (client -> server)
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id,omitempty"`
	Kind            string `json:"kind"`

	// select: hotbar slot.
	Slot *int `json:"slot,omitempty"`
	// interact: RIGHT_CLICK_AIR (default), RIGHT_CLICK_BLOCK, LEFT_CLICK_AIR.
	Action string `json:"action,omitempty"`
	// move.
	From  *SlotRef `json:"from,omitempty"`
	To    *SlotRef `json:"to,omitempty"`
	Shift bool     `json:"shift,omitempty"`
	// Count splits the source stack; zero moves all of it.
	Count int `json:"count,omitempty"`
}

// SlotRef addresses one slot. Area is inventory, offhand, view or grid.
type SlotRef struct {
	Area string `json:"area"`
	Slot int    `json:"slot"`
}

// STATE (server -> client), sent after every accepted ACT.
type StateMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	AckFor          string      `json:"ack_for,omitempty"`
	Inventory       []*ItemView `json:"inventory"`
	OffHand         *ItemView   `json:"off_hand"`
	Held            int         `json:"held"`
	View            *ViewState  `json:"view,omitempty"`
	Grid            []*ItemView `json:"grid"`
	Result          *ItemView   `json:"result"`
}

type ViewState struct {
	Title string      `json:"title"`
	Slots []*ItemView `json:"slots"`
}

type ItemView struct {
	Material string   `json:"material"`
	Amount   int      `json:"amount"`
	Name     string   `json:"name,omitempty"`
	Lore     []string `json:"lore,omitempty"`

	Backpack *BackpackView `json:"backpack,omitempty"`
	// UpgradeLevel is set on upgrade tokens.
	UpgradeLevel int `json:"upgrade_level,omitempty"`
}

type BackpackView struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
	Slots int    `json:"slots"`
	Used  int    `json:"used"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

func NewError(ackFor, code, msg string) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, AckFor: ackFor, Code: code, Message: msg}
}
