// Package websocket pushes game events to browsers watching a session.
//
// A central Hub owns every connection. Clients attach to one session with
// /ws?session=<id>; after each action the API calls BroadcastResult and the
// hub forwards the ordered engine events plus the new state to every client
// of that session. Clients do not send commands over the socket.
//
// Outgoing frames are JSON:
//
//	{"session_id":"ab12","event":"roll","events":[...],"game_state":{...}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
