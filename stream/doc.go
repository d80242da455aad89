// Package stream consumes the task event stream of the agent platform.
//
// A task pushes named frames over a long-lived server-sent-events
// connection: lifecycle transitions, workflow and iteration progress, LLM
// and tool calls, budget warnings, and human approval requests. The client
// classifies every frame into a closed event vocabulary, parses its JSON
// payload (falling back to the raw string when parsing fails), and delivers
// a normalized Event to the subscriber in arrival order.
//
// # Connecting
//
// Create a client with callbacks and connect it to a target URL:
//
//	client := stream.NewClient(stream.Config{
//	    OnMessage: func(ev stream.Event) {
//	        fmt.Printf("%s: %v\n", ev.Type, ev.Data)
//	    },
//	    OnError: func(err error) { log.Println("stream:", err) },
//	})
//	if err := client.Connect(ctx, eventsURL); err != nil {
//	    return err
//	}
//	defer client.Disconnect()
//
// The client holds at most one connection. After an error-induced closure it
// reconnects automatically at a fixed interval (3s by default) until
// Disconnect is called; Disconnect cancels a pending reconnect before
// returning, so a torn-down client never dials again.
//
// # Channels
//
// Watch wraps a client in a channel for select-based consumers:
//
//	events, err := stream.Watch(ctx, eventsURL, stream.Config{})
//	if err != nil {
//	    return err
//	}
//	for ev := range events {
//	    // ...
//	}
//
// # Snapshots
//
// TaskAccumulator folds the event sequence into a live task view:
//
//	acc := stream.NewTaskAccumulator()
//	client := stream.NewClient(stream.Config{OnMessage: acc.Apply})
//
// Snapshot can then be read from any goroutine to render status.
package stream
