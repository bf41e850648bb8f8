package game

// 客户端请求

type CreateRoomRequest struct {
	Name string `json:"name"`
}

// RoomRequest 是所有只携带房间号的请求
type RoomRequest struct {
	Code string `json:"code"`
}

type JoinRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type UpdateSettingsRequest struct {
	Code     string        `json:"code"`
	Settings SettingsPatch `json:"settings"`
}

type SubmitHintRequest struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type SubmitVoteRequest struct {
	Code          string `json:"code"`
	CandidateName string `json:"candidate_name"`
}

type SpyGuessRequest struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type ChatMessageRequest struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// 计时器到期后投递给房间自身的请求
type TimeoutRequest struct {
	Stage      string `json:"stage"`
	Generation uint64 `json:"generation"`
}

// 服务端响应

type ErrorMessage struct {
	Message string `json:"message"`
}

type RoomCreatedResponse struct {
	Code string       `json:"code"`
	Room RoomSnapshot `json:"room"`
	You  PlayerView   `json:"you"`
}

type RoomJoinedResponse struct {
	Room RoomSnapshot `json:"room"`
	You  PlayerView   `json:"you"`
}

type RoomUpdatedResponse struct {
	Room RoomSnapshot `json:"room"`
}

type PlayerJoinedResponse struct {
	Player PlayerView   `json:"player"`
	Room   RoomSnapshot `json:"room"`
}

type PlayerLeftResponse struct {
	Name string       `json:"name"`
	Room RoomSnapshot `json:"room"`
}

type RoundPlayer struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// RoundStartResponse 单独发给每位玩家，只包含其本人的身份
type RoundStartResponse struct {
	Round        int           `json:"round"`
	TotalRounds  int           `json:"total_rounds"`
	Role         string        `json:"role"`
	Word         *string       `json:"word"`
	Category     string        `json:"category"`
	Mode         string        `json:"mode"`
	TurnDuration int           `json:"turn_duration"`
	Players      []RoundPlayer `json:"players"`
	Target       string        `json:"target,omitempty"`
}

type PhaseChangeResponse struct {
	Phase   string            `json:"phase"`
	Targets map[string]string `json:"targets,omitempty"`
	Hints   []Hint            `json:"hints,omitempty"`
}

type HintSubmittedResponse struct {
	PlayerName string `json:"player_name"`
	Avatar     string `json:"avatar"`
	Hint       string `json:"hint"`
	Total      int    `json:"total"`
	Needed     int    `json:"needed"`
}

type VoteCastResponse struct {
	Total  int `json:"total"`
	Needed int `json:"needed"`
}

type SpyChanceResponse struct {
	SpyName string         `json:"spy_name"`
	Votes   map[string]int `json:"votes"`
	Seconds int            `json:"seconds"`
}

type RoundResultsResponse struct {
	SpyCaught           bool           `json:"spy_caught"`
	SpyGuessedCorrectly bool           `json:"spy_guessed_correctly"`
	SpyName             string         `json:"spy_name"`
	Word                string         `json:"word"`
	Votes               map[string]int `json:"votes"`
	Players             []Standing     `json:"players"`
	Round               int            `json:"round"`
	TotalRounds         int            `json:"total_rounds"`
	HasNextRound        bool           `json:"has_next_round"`
}

type GameOverResponse struct {
	Players []Standing `json:"players"`
}

type ChatMessageResponse struct {
	PlayerName string `json:"player_name"`
	Avatar     string `json:"avatar"`
	Message    string `json:"message"`
}
