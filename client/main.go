// 交互式演示客户端：注册昵称、建局并用命令行发送指令。
//
//	go run ./client -addr localhost:8080
//
// 支持的输入：sign_up <name> / create / enter <gameId> / start / left /
// right / down / rotate / state / games / participants / cancel / leave
package main

import (
	"bufio"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/blockfall/gameserver/network"
)

func send(c *websocket.Conn, name string, payload any) {
	frame, err := network.EncodeCommand(name, uuid.New(), payload)
	if err != nil {
		log.Printf("encode failed: %v", err)
		return
	}
	if err := c.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		log.Printf("write failed: %v", err)
	}
}

func main() {
	addr := "localhost:8080"
	if len(os.Args) > 2 && os.Args[1] == "-addr" {
		addr = os.Args[2]
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- %s", message)
		}
	}()

	// Stdin loop
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "sign_up":
				if len(fields) < 2 {
					log.Println("usage: sign_up <name>")
					continue
				}
				send(c, network.CmdSignUp, map[string]string{"name": fields[1]})
			case "create":
				send(c, network.CmdCreateGame, map[string]string{})
			case "enter":
				if len(fields) < 2 {
					log.Println("usage: enter <gameId>")
					continue
				}
				send(c, network.CmdEnterGame, map[string]string{"gameId": fields[1]})
			case "start":
				send(c, network.CmdStartGame, map[string]string{})
			case "left":
				send(c, network.CmdMoveLeft, map[string]string{})
			case "right":
				send(c, network.CmdMoveRight, map[string]string{})
			case "down":
				send(c, network.CmdMoveDown, map[string]string{})
			case "rotate":
				send(c, network.CmdRotate, map[string]string{})
			case "state":
				send(c, network.CmdSendState, map[string]string{})
			case "games":
				send(c, network.CmdSendGames, map[string]string{})
			case "participants":
				send(c, network.CmdSendParticipants, map[string]string{})
			case "cancel":
				send(c, network.CmdCancelGame, map[string]string{})
			case "leave":
				send(c, network.CmdLeaveGame, map[string]string{})
			default:
				log.Printf("unknown input: %s", fields[0])
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection")
		c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
