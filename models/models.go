// models/models.go
package models

// Player 已注册玩家
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerState 单局内的玩家积分
type PlayerState struct {
	PlayerID string `json:"playerId"`
	Points   int    `json:"points"`
}

// GameConfig 对局配置，开局前可修改
type GameConfig struct {
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
	Name string `json:"name"`
}

// GameSummary 大厅列表中的一项
type GameSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	OwnerID     string `json:"ownerId"`
	PlayerCount int    `json:"playerCount"`
}

// Vec 格子坐标，矩阵原点在左上角，Y 向下增长
type Vec struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BlockView 方块的可序列化视图
type BlockView struct {
	Origin   Vec   `json:"origin"`
	Cells    []Vec `json:"cells"`
	Rotation int   `json:"rotation"`
}

// GameSnapshot 引擎状态的一份深拷贝，外部持有者永远看不到变更中的值
type GameSnapshot struct {
	ID                 string        `json:"id"`
	OwnerID            string        `json:"ownerId"`
	Config             GameConfig    `json:"config"`
	Status             string        `json:"status"`
	Matrix             [][]int       `json:"matrix"`
	ActiveBlock        *BlockView    `json:"activeBlock,omitempty"`
	NextBlock          *BlockView    `json:"nextBlock,omitempty"`
	BlockCount         int           `json:"blockCount"`
	LineCount          int           `json:"lineCount"`
	Level              int           `json:"level"`
	StepCount          int           `json:"stepCount"`
	Players            []PlayerState `json:"players"`
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`
}
