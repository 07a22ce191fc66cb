// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in test page.
package server

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Server owns the room registry, the joke provider, and the set of live
// WebSocket connections. It is constructed once at startup and passed to the
// router; there is no package-level instance.
type Server struct {
	cfg      Config
	registry *Registry
	jokes    JokeProvider
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*Client]struct{}
	wg    sync.WaitGroup
}

// NewServer creates a Server wired to the given registry and joke provider.
// Passing a nil config uses the defaults.
func NewServer(cfg *Config, registry *Registry, jokes JokeProvider) *Server {
	if cfg == nil {
		cfg = NewConfig()
	}

	checker := newOriginChecker(cfg.AllowedOrigins)
	return &Server{
		cfg:      *cfg,
		registry: registry,
		jokes:    jokes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checker.checkOrigin,
		},
		conns: make(map[*Client]struct{}),
	}
}

// Registry returns the server's room registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// WebSocketHandler handles WebSocket upgrade requests on /chat/{room}. It
// upgrades the HTTP connection, constructs a Client and a Session bound to
// the room named in the path, and starts the client's read/write pumps.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	roomName := r.PathValue("room")
	if roomName == "" {
		http.Error(w, "Room name is required.", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, s, r.RemoteAddr)
	client.session = NewSession(client.Enqueue, s.registry, roomName, s.jokes)
	s.track(client)
	log.Printf("Client connected from %s to room %q", client.addr, roomName)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		client.writePump()
	}()
	go func() {
		defer s.wg.Done()
		client.readPump()
	}()
}

// HealthHandler provides a simple health check endpoint that returns server
// status as a plain text message.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "GroupChat server is running!")
}

// TestPageHandler serves an HTML test page speaking the chat protocol. It
// provides a simple web interface to join a room, exchange messages, and try
// the joke and member-listing requests.
func (s *Server) TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	html := `<!DOCTYPE html>
<html>
<head>
    <title>GroupChat Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] {
            padding: 5px;
            margin-right: 10px;
        }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:hover { background-color: #005a87; }
        .note { color: gray; font-style: italic; }
        .chat { color: black; }
    </style>
</head>
<body>
    <h1>GroupChat Test</h1>

    <div>
        <input type="text" id="roomInput" placeholder="Room" value="lobby">
        <input type="text" id="nameInput" placeholder="Your name">
        <button id="joinButton" onclick="join()">Join</button>
    </div>

    <div id="messages"></div>

    <div>
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendChat()" disabled>Send</button>
        <button id="jokeButton" onclick="getJoke()" disabled>Joke</button>
        <button id="membersButton" onclick="getMembers()" disabled>Members</button>
    </div>

    <script>
        let ws = null;
        const messagesDiv = document.getElementById('messages');
        const messageInput = document.getElementById('messageInput');

        function addLine(text, cls) {
            const line = document.createElement('div');
            line.className = cls;
            line.textContent = text;
            messagesDiv.appendChild(line);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function setJoined(joined) {
            messageInput.disabled = !joined;
            document.getElementById('sendButton').disabled = !joined;
            document.getElementById('jokeButton').disabled = !joined;
            document.getElementById('membersButton').disabled = !joined;
            document.getElementById('joinButton').disabled = joined;
        }

        function join() {
            const room = document.getElementById('roomInput').value.trim();
            const name = document.getElementById('nameInput').value.trim();
            if (!room || !name) {
                addLine('Both a room and a name are required.', 'note');
                return;
            }

            ws = new WebSocket('ws://' + location.host + '/chat/' + encodeURIComponent(room));

            ws.onopen = function() {
                ws.send(JSON.stringify({type: 'join', name: name}));
                setJoined(true);
            };

            ws.onmessage = function(event) {
                const msg = JSON.parse(event.data);
                if (msg.type === 'note') {
                    addLine(msg.text, 'note');
                } else if (msg.type === 'chat') {
                    addLine(msg.name + ': ' + msg.text, 'chat');
                }
            };

            ws.onclose = function() {
                addLine('Connection closed.', 'note');
                setJoined(false);
                ws = null;
            };
        }

        function sendChat() {
            const text = messageInput.value.trim();
            if (text && ws) {
                ws.send(JSON.stringify({type: 'chat', text: text}));
                messageInput.value = '';
            }
        }

        function getJoke() {
            if (ws) ws.send(JSON.stringify({type: 'get-joke'}));
        }

        function getMembers() {
            if (ws) ws.send(JSON.stringify({type: 'get-members'}));
        }

        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') {
                sendChat();
            }
        });
    </script>
</body>
</html>`
	if _, err := fmt.Fprint(w, html); err != nil {
		log.Printf("Error writing HTML response: %v", err)
	}
}
