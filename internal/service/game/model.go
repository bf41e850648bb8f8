package game

// 玩家在一轮中的身份
const (
	ROLE_NORMAL = "normal"
	ROLE_SPY    = "spy"
)

// 游戏模式
const (
	// 每位玩家写一条关于词语的提示
	MODE_HINT = "hint"
	// 每位玩家口头向指定的另一位玩家提问
	MODE_QUESTION = "question"
)

// 默认设置
const (
	DEFAULT_MODE          = MODE_QUESTION
	DEFAULT_CATEGORY      = "random"
	DEFAULT_TURN_DURATION = 15
	DEFAULT_TOTAL_ROUNDS  = 3
)

// 房间与回合的限制
const (
	MIN_PLAYERS = 3
	MAX_PLAYERS = 12

	MIN_TURN_DURATION = 5
	MAX_TURN_DURATION = 120
	MIN_TOTAL_ROUNDS  = 1
	MAX_TOTAL_ROUNDS  = 20
	MAX_CUSTOM_WORDS  = 50

	MAX_NAME_LEN = 20
	MAX_TEXT_LEN = 100
)

var AVATARS = []string{"😎", "🤠", "😈", "🤓", "😺", "🦊", "🐵", "🦁", "🐯", "🐻", "🐼", "🐸"}

// Player 只在房间协程内部使用，对外发送的是 PlayerView
type Player struct {
	ID     string
	Name   string
	Avatar string
	Score  int
	Ready  bool
	IsHost bool

	// 仅在提问模式下有效，每轮重新分配
	AskedTarget string

	session *Session
}

type Settings struct {
	Mode         string   `json:"mode"`
	Category     string   `json:"category"`
	TurnDuration int      `json:"turn_duration"`
	TotalRounds  int      `json:"total_rounds"`
	CustomWords  []string `json:"custom_words,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		Mode:         DEFAULT_MODE,
		Category:     DEFAULT_CATEGORY,
		TurnDuration: DEFAULT_TURN_DURATION,
		TotalRounds:  DEFAULT_TOTAL_ROUNDS,
	}
}

// SettingsPatch 中为 nil 的字段保持不变
type SettingsPatch struct {
	Mode         *string  `json:"mode,omitempty"`
	Category     *string  `json:"category,omitempty"`
	TurnDuration *int     `json:"turn_duration,omitempty"`
	TotalRounds  *int     `json:"total_rounds,omitempty"`
	CustomWords  []string `json:"custom_words,omitempty"`
}

type Hint struct {
	PlayerName string `json:"player_name"`
	Avatar     string `json:"avatar"`
	Text       string `json:"text"`
}

// RoundState 只在一轮进行中存在，大厅阶段为 nil
type RoundState struct {
	Word    string
	SpyID   string
	SpyName string

	Hints  []Hint
	Hinted map[string]struct{}
	Votes  map[string]int
	Voted  map[string]struct{}
	// 候选人第一次得票的顺序，用于平票时取先出现者
	VoteOrder []string

	SpyCaught           bool
	SpyGuessedCorrectly bool
}

func newRoundState(word string, spy *Player) *RoundState {
	return &RoundState{
		Word:    word,
		SpyID:   spy.ID,
		SpyName: spy.Name,
		Hints:   make([]Hint, 0),
		Hinted:  make(map[string]struct{}),
		Votes:   make(map[string]int),
		Voted:   make(map[string]struct{}),
	}
}

// 对外公开的玩家信息，不包含身份和词语
type PlayerView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Score  int    `json:"score"`
	Ready  bool   `json:"ready"`
	IsHost bool   `json:"is_host"`
}

type RoomSnapshot struct {
	Code         string       `json:"code"`
	Players      []PlayerView `json:"players"`
	Settings     Settings     `json:"settings"`
	CurrentRound int          `json:"current_round"`
	InGame       bool         `json:"in_game"`
	HostID       string       `json:"host_id"`
	Stage        string       `json:"stage"`
}

type Standing struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Score  int    `json:"score"`
}
