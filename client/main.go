package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// send wraps a payload in the JSON event envelope and ships it.
func send(c *websocket.Conn, event string, data interface{}) error {
	msg, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, msg)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	roomID := ""

	// Read loop; remembers the last roomId so room commands need no argument.
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- RECV: %s", string(message))

			var incoming struct {
				Event string `json:"event"`
				Data  struct {
					RoomID string `json:"roomId"`
				} `json:"data"`
			}
			if json.Unmarshal(message, &incoming) == nil && incoming.Data.RoomID != "" {
				roomID = incoming.Data.RoomID
			}
		}
	}()

	log.Println("Commands: auth <userId> | queue | leave | accept | decline | next <index> | score <userId> <points> | finish <p1> <p2>")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(strings.TrimSpace(text))
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "auth":
				if len(fields) < 2 {
					log.Println("Usage: auth <userId>")
					continue
				}
				err = send(c, "authenticate", map[string]string{"userId": fields[1]})
			case "queue":
				err = send(c, "joinQueue", nil)
			case "leave":
				err = send(c, "leaveQueue", nil)
			case "accept":
				err = send(c, "acceptMatch", map[string]string{"roomId": roomID})
			case "decline":
				err = send(c, "declineMatch", map[string]string{"roomId": roomID})
			case "next":
				if len(fields) < 2 {
					log.Println("Usage: next <index>")
					continue
				}
				idx, _ := strconv.Atoi(fields[1])
				err = send(c, "advanceQuestion", map[string]interface{}{
					"roomId": roomID, "questionIndex": idx,
				})
			case "score":
				if len(fields) < 3 {
					log.Println("Usage: score <userId> <points>")
					continue
				}
				points, _ := strconv.Atoi(fields[2])
				err = send(c, "reportScore", map[string]interface{}{
					"roomId": roomID, "userId": fields[1], "score": points,
				})
			case "finish":
				if len(fields) < 3 {
					log.Println("Usage: finish <p1Score> <p2Score>")
					continue
				}
				p1, _ := strconv.Atoi(fields[1])
				p2, _ := strconv.Atoi(fields[2])
				err = send(c, "finishMatch", map[string]interface{}{
					"roomId": roomID, "playerOneScore": p1, "playerTwoScore": p2,
				})
			default:
				log.Printf("Unknown command %q", fields[0])
				continue
			}

			if err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT: %s", fields[0])
		}
	}
}
