// Package ws pushes status snapshots to browser clients over WebSocket.
//
// Hub keeps the set of connected clients and sends every one of them the
// current snapshot on connect, on every broadcast tick and whenever Notify is
// called after the summary file is reloaded.
//
// Message format sent to clients:
//
//	{
//	  "event": "snapshot",
//	  "data":  { /* same schema as GET /api/v1/snapshot */ }
//	}
//
// Origins are checked against the configured CORS list; "*" allows all.
// The server mounts the hub at /ws/stream.
package ws
