// Package chatglot provides an inline machine translation engine for chat
// applications.
//
// Chatglot watches a host application's message tree for newly appearing
// messages, binds a translation control to each one exactly once, and drives
// a per-message state machine between the original and translated views. It
// talks to a remote translation service over HTTP, choosing between a
// standard round trip, a quality-optimized adaptive round trip, and a
// progressive server-sent-event stream depending on text length and
// configuration.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/chatglot/chatglot"
//	    "github.com/chatglot/chatglot/client"
//	    "github.com/chatglot/chatglot/store"
//	    "github.com/chatglot/chatglot/watcher"
//	)
//
//	func main() {
//	    cfg := chatglot.DefaultConfig()
//	    cfg.BaseURL = "https://translate.example.com"
//	    cfg.APIKey = os.Getenv("CHATGLOT_API_KEY")
//
//	    engine := chatglot.NewEngine(cfg, client.New(cfg), store.New(),
//	        chatglot.WithWatcher(watcher.New(watcher.DefaultConfig())),
//	    )
//
//	    // Feed DOM change batches from the host adapter.
//	    engine.Observe(chatglot.MutationBatch{
//	        AddedFragments: []string{`<div class="message" data-message-id="42">
//	            <div class="text-content">Hello world</div></div>`},
//	    })
//
//	    // A user click on the control for item "42":
//	    engine.HandleClick(context.Background(), "42")
//	}
package chatglot
