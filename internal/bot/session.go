package bot

import (
	"sync"

	"solana-honey-bot/internal/honey"
	"solana-honey-bot/internal/token"
)

// ConvState is where a chat stands in a multi-step dialog. Free text is
// routed by state; StateNone means no dialog is open and text is ignored
// unless it is a command.
type ConvState int

const (
	StateNone ConvState = iota

	StateRestoreKey

	StateStrategyVolume
	StateStrategyHolders
	StateStrategyAge

	StateHoneyMint
	StateHoneyAmount
	StateHoneyProfits
	StateHoneySells

	StateBuyMint
	StateBuyAmount
	StateSellMint
	StateSellAmount

	StateCopyAdd
)

// Session is the per-chat dialog scratchpad. It never outlives the process;
// everything durable goes through the user store.
type Session struct {
	State ConvState

	// honey setup draft
	HoneyMint    string
	HoneyAmount  float64
	HoneyProfits []float64

	// strategy draft
	Strategy token.Strategy

	// manual trade draft
	TradeMint string

	// queued sell-all holdings awaiting confirmation
	PendingSellAll []Holding
}

// Holding is one SPL balance queued for liquidation.
type Holding struct {
	Mint   string
	Amount uint64
}

// Reset clears the dialog without touching anything durable.
func (s *Session) Reset() {
	*s = Session{}
}

// DraftHoney assembles the honey position once all four steps are in.
func (s *Session) DraftHoney(soldPercents []float64) (*honey.Token, error) {
	return honey.NewToken(s.HoneyMint, s.HoneyAmount, s.HoneyProfits, soldPercents)
}

type sessions struct {
	mu sync.Mutex
	m  map[int64]*Session
}

func newSessions() *sessions {
	return &sessions{m: make(map[int64]*Session)}
}

// get returns the chat's session, creating it on first use.
func (s *sessions) get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[chatID]
	if !ok {
		sess = &Session{}
		s.m[chatID] = sess
	}
	return sess
}
