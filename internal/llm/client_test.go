package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"pundit/internal/llm"
	"pundit/pkg/logger"

	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func chatReply(content string) []byte {
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
		"usage": map[string]any{
			"prompt_tokens":     12,
			"completion_tokens": 34,
			"total_tokens":      46,
		},
	}
	b, _ := json.Marshal(reply)
	return b
}

func TestHTTPClient_Generate(t *testing.T) {
	Convey("Given an OpenAI-compatible upstream", t, func() {
		Convey("When the first call succeeds", func() {
			var gotAuth string
			var gotBody map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				_ = json.NewDecoder(r.Body).Decode(&gotBody)
				_, _ = w.Write(chatReply("hello there"))
			}))
			defer srv.Close()

			client, err := llm.NewHTTPClient(
				llm.WithEndpoint(srv.URL),
				llm.WithAPIKeys("key-1"),
				llm.WithDefaultModel("test-model"),
			)
			So(err, ShouldBeNil)

			resp, err := client.Generate(context.Background(), llm.Request{
				System:      "you are terse",
				User:        "say hello",
				Temperature: 0,
				MaxTokens:   64,
			})

			Convey("Then the generated text and usage come back", func() {
				So(err, ShouldBeNil)
				So(resp.Text, ShouldEqual, "hello there")
				So(resp.Model, ShouldEqual, "test-model")
				So(resp.Usage.TotalTokens, ShouldEqual, 46)
			})

			Convey("And the request carries the bearer key and chat payload", func() {
				So(err, ShouldBeNil)
				So(gotAuth, ShouldEqual, "Bearer key-1")
				So(gotBody["model"], ShouldEqual, "test-model")
				So(gotBody["n"], ShouldEqual, 1)
				messages, ok := gotBody["messages"].([]any)
				So(ok, ShouldBeTrue)
				So(messages, ShouldHaveLength, 2)
			})
		})

		Convey("When the upstream fails transiently", func() {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&calls, 1) == 1 {
					http.Error(w, "rate limited", http.StatusTooManyRequests)
					return
				}
				_, _ = w.Write(chatReply("second time lucky"))
			}))
			defer srv.Close()

			client, err := llm.NewHTTPClient(
				llm.WithEndpoint(srv.URL),
				llm.WithAPIKeys("key-1"),
				llm.WithRetryAttempts(2),
			)
			So(err, ShouldBeNil)

			resp, err := client.Generate(context.Background(), llm.Request{User: "retry me"})

			Convey("Then the retry recovers without surfacing an error", func() {
				So(err, ShouldBeNil)
				So(resp.Text, ShouldEqual, "second time lucky")
				So(atomic.LoadInt32(&calls), ShouldEqual, 2)
			})
		})

		Convey("When the first key is rejected", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") == "Bearer dead-key" {
					http.Error(w, "invalid api key", http.StatusUnauthorized)
					return
				}
				_, _ = w.Write(chatReply("rotated"))
			}))
			defer srv.Close()

			client, err := llm.NewHTTPClient(
				llm.WithEndpoint(srv.URL),
				llm.WithAPIKeys("dead-key", "live-key"),
				llm.WithRetryAttempts(1),
			)
			So(err, ShouldBeNil)

			resp, err := client.Generate(context.Background(), llm.Request{User: "rotate"})

			Convey("Then the next key in rotation serves the call", func() {
				So(err, ShouldBeNil)
				So(resp.Text, ShouldEqual, "rotated")
			})
		})

		Convey("When the primary model always fails but a fallback works", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				_ = json.NewDecoder(r.Body).Decode(&body)
				if body["model"] == "primary" {
					http.Error(w, "model overloaded", http.StatusServiceUnavailable)
					return
				}
				_, _ = w.Write(chatReply("served by fallback"))
			}))
			defer srv.Close()

			client, err := llm.NewHTTPClient(
				llm.WithEndpoint(srv.URL),
				llm.WithAPIKeys("key-1"),
				llm.WithDefaultModel("primary"),
				llm.WithFallbackModels("backup"),
				llm.WithRetryAttempts(1),
			)
			So(err, ShouldBeNil)

			resp, err := client.Generate(context.Background(), llm.Request{User: "cascade"})

			Convey("Then the cascade lands on the fallback model", func() {
				So(err, ShouldBeNil)
				So(resp.Text, ShouldEqual, "served by fallback")
				So(resp.Model, ShouldEqual, "backup")
			})
		})

		Convey("When every model and key fails", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "down for maintenance", http.StatusInternalServerError)
			}))
			defer srv.Close()

			client, err := llm.NewHTTPClient(
				llm.WithEndpoint(srv.URL),
				llm.WithAPIKeys("key-1"),
				llm.WithRetryAttempts(1),
			)
			So(err, ShouldBeNil)

			_, err = client.Generate(context.Background(), llm.Request{User: "doomed"})

			Convey("Then the exhaustion surfaces as a transport error", func() {
				So(err, ShouldWrap, llm.ErrTransport)
			})
		})

		Convey("When the upstream returns no choices", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[],"usage":{}}`))
			}))
			defer srv.Close()

			client, err := llm.NewHTTPClient(
				llm.WithEndpoint(srv.URL),
				llm.WithAPIKeys("key-1"),
				llm.WithRetryAttempts(1),
			)
			So(err, ShouldBeNil)

			_, err = client.Generate(context.Background(), llm.Request{User: "empty"})

			Convey("Then the empty answer is a transport error", func() {
				So(err, ShouldWrap, llm.ErrTransport)
			})
		})

		Convey("When the context is already canceled", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write(chatReply("never seen"))
			}))
			defer srv.Close()

			client, err := llm.NewHTTPClient(
				llm.WithEndpoint(srv.URL),
				llm.WithAPIKeys("key-1"),
			)
			So(err, ShouldBeNil)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err = client.Generate(ctx, llm.Request{User: "canceled"})

			Convey("Then the call fails fast with a transport error", func() {
				So(err, ShouldWrap, llm.ErrTransport)
			})
		})
	})
}

func TestNewHTTPClient(t *testing.T) {
	Convey("Given client construction", t, func() {
		Convey("When no API key is supplied", func() {
			_, err := llm.NewHTTPClient()

			Convey("Then construction fails with the sentinel", func() {
				So(err, ShouldWrap, llm.ErrNoAPIKey)
			})
		})

		Convey("When only empty keys are supplied", func() {
			_, err := llm.NewHTTPClient(llm.WithAPIKeys("", ""))

			Convey("Then they are dropped and construction fails", func() {
				So(err, ShouldWrap, llm.ErrNoAPIKey)
			})
		})
	})
}

func TestMock(t *testing.T) {
	Convey("Given the mock client", t, func() {
		Convey("When no behavior is supplied", func() {
			mock := &llm.Mock{}
			_, err := mock.Generate(context.Background(), llm.Request{User: "ping"})

			Convey("Then every call fails with the transport sentinel", func() {
				So(err, ShouldWrap, llm.ErrTransport)
			})

			Convey("And the request is still recorded", func() {
				So(mock.Calls, ShouldHaveLength, 1)
				So(mock.Calls[0].User, ShouldEqual, "ping")
			})
		})

		Convey("When a behavior is supplied", func() {
			mock := &llm.Mock{GenerateFunc: func(_ context.Context, req llm.Request) (llm.Response, error) {
				return llm.Response{Text: "echo: " + req.User}, nil
			}}

			resp, err := mock.Generate(context.Background(), llm.Request{User: "hi"})

			Convey("Then the supplied function answers", func() {
				So(err, ShouldBeNil)
				So(resp.Text, ShouldEqual, "echo: hi")
			})
		})
	})
}
