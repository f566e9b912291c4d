// network/protocol.go
//
// 文本线协议：
//
//	客户端命令   "<command>:<commandId>@<json-payload>"
//	服务端响应   "response_<commandId>@{"status":...,"data":...,"errors":...}"
//	服务端事件   "<eventName>@<json-payload>"
//
// commandId 是 uuid；uuid.Nil 表示不期待响应。帧头与负载以第一个 '@' 分
// 隔，负载 JSON 内未转义的 '@' 不受保护，下游客户端依赖该切分行为。
package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	CmdSignUp           = "sign_up"
	CmdCreateGame       = "create_game"
	CmdEnterGame        = "enter_game"
	CmdLeaveGame        = "leave_game"
	CmdCancelGame       = "cancel_game"
	CmdChangeConfig     = "change_config"
	CmdStartGame        = "start_game"
	CmdMoveLeft         = "move_left"
	CmdMoveRight        = "move_right"
	CmdMoveDown         = "move_down"
	CmdRotate           = "rotate"
	CmdSendState        = "send_state"
	CmdSendGames        = "send_games"
	CmdSendParticipants = "send_participants"
)

const (
	EventGamesList       = "games_list"
	EventParticipantList = "participant_list"
	EventGameNotFound    = "game_not_found"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrMalformedFrame 帧结构非法，属于连接级致命错误
var ErrMalformedFrame = errors.New("malformed command frame")

// Command 解码后的客户端命令
type Command struct {
	Name    string
	ID      uuid.UUID
	Payload json.RawMessage
}

// Response 命令响应体
type Response struct {
	Status string   `json:"status"`
	Data   any      `json:"data,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// ParseCommand decodes a command frame. Only the first '@' separates the
// head from the payload; the head must be "<command>:<commandId>".
func ParseCommand(frame string) (*Command, error) {
	head, payload, found := strings.Cut(frame, "@")
	if !found {
		return nil, fmt.Errorf("%w: missing payload delimiter", ErrMalformedFrame)
	}
	name, idPart, found := strings.Cut(head, ":")
	if !found || name == "" {
		return nil, fmt.Errorf("%w: missing command/id prefix", ErrMalformedFrame)
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil, fmt.Errorf("%w: bad command id %q", ErrMalformedFrame, idPart)
	}
	return &Command{Name: name, ID: id, Payload: json.RawMessage(payload)}, nil
}

// EncodeCommand builds a command frame for outbound use (client side).
func EncodeCommand(name string, id uuid.UUID, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s@%s", name, id, data), nil
}

// EncodeResponse builds a response frame correlated to the command id.
func EncodeResponse(id uuid.UUID, resp Response) string {
	data, err := json.Marshal(resp)
	if err != nil {
		data = []byte(`{"status":"error","errors":["internal encoding failure"]}`)
	}
	return fmt.Sprintf("response_%s@%s", id, data)
}

// EncodeResponseRaw correlates a response to an id token that never parsed
// as a uuid, so a protocol error can still name the offending command id.
func EncodeResponseRaw(idToken string, resp Response) string {
	data, err := json.Marshal(resp)
	if err != nil {
		data = []byte(`{"status":"error","errors":["internal encoding failure"]}`)
	}
	return fmt.Sprintf("response_%s@%s", idToken, data)
}

// EncodeEvent builds a broadcast event frame.
func EncodeEvent(name string, payload any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("{}")
	}
	return fmt.Sprintf("%s@%s", name, data)
}
