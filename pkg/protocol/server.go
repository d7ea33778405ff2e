package protocol

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/hubtree/pkg/debug"
	"github.com/vanderheijden86/hubtree/pkg/graph"
)

const maxLine = 16 << 20

// Server answers db_* requests against the most recently loaded graph.
type Server struct {
	// By names this end in response heads. To is used when a request
	// head has no sender.
	By string
	To string
	// Deny lists request types answered with a null result.
	Deny map[string]bool

	mu  sync.Mutex
	db  *graph.DB
	mid uint64

	outMu sync.Mutex
	out   io.Writer
}

// NewServer returns a server writing messages to out. out may be nil when
// only Handle is used.
func NewServer(by, to string, out io.Writer) *Server {
	return &Server{By: by, To: to, out: out}
}

func (s *Server) nextHead(to string) Head {
	s.mu.Lock()
	defer s.mu.Unlock()
	if to == "" {
		to = s.To
	}
	h := Head{By: s.By, To: to, Mid: s.mid}
	s.mid++
	return h
}

// Load replaces the graph and returns the db_initialized notice. A nil
// entries map loads an empty graph.
func (s *Server) Load(entries graph.Entries) Envelope {
	if entries == nil {
		entries = graph.Entries{}
	}
	db := graph.NewDB(entries)
	s.mu.Lock()
	s.db = db
	s.mu.Unlock()

	data, _ := json.Marshal(Initialized{Entries: db.Raw()})
	return Envelope{Head: s.nextHead(""), Type: TypeInitialized, Data: data}
}

// DB returns the loaded graph, or nil.
func (s *Server) DB() *graph.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// Handle answers one request. Anything that is not a db_* type fails
// with ErrUnknownMessage. An unknown db_* operation, a denied one, or any
// request before a graph loads gets a null result.
func (s *Server) Handle(req Envelope) (Envelope, error) {
	if !strings.HasPrefix(req.Type, "db_") {
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownMessage, req.Type)
	}
	debug.Log("protocol request %s mid=%d", req.Type, req.Head.Mid)

	result, err := s.result(req)
	if err != nil {
		return Envelope{}, err
	}
	data, err := json.Marshal(Response{Result: result})
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding response: %w", err)
	}
	cause := req.Head
	return Envelope{
		Head: s.nextHead(req.Head.By),
		Refs: Refs{Cause: &cause},
		Type: TypeResponse,
		Data: data,
	}, nil
}

var null = json.RawMessage("null")

func (s *Server) result(req Envelope) (json.RawMessage, error) {
	db := s.DB()
	if db == nil {
		log.Printf("warning: %s before the graph loaded", req.Type)
		return null, nil
	}
	if s.Deny[req.Type] {
		log.Printf("warning: %s denied", req.Type)
		return null, nil
	}

	var params PathParams
	if len(req.Data) > 0 && (req.Type == TypeGet || req.Type == TypeHas) {
		if err := json.Unmarshal(req.Data, &params); err != nil {
			log.Printf("warning: %s: bad params: %v", req.Type, err)
			return null, nil
		}
	}

	var v any
	switch req.Type {
	case TypeGet:
		if e := db.Get(params.Path); e != nil {
			v = e
		}
	case TypeHas:
		v = db.Has(params.Path)
	case TypeIsEmpty:
		v = db.IsEmpty()
	case TypeRoot:
		if e := db.Root(); e != nil {
			v = e
		}
	case TypeKeys:
		v = db.Keys()
	case TypeRaw:
		return db.Raw(), nil
	default:
		log.Printf("warning: unknown db operation %s", req.Type)
		return null, nil
	}
	if v == nil {
		return null, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s result: %w", req.Type, err)
	}
	return raw, nil
}

// Send writes env as one JSON line.
func (s *Server) Send(env Envelope) error {
	line, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", env.Type, err)
	}
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.out == nil {
		return nil
	}
	if _, err := s.out.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing %s: %w", env.Type, err)
	}
	return nil
}

// Serve reads one request per line from r and writes each response. Lines
// that do not decode are logged and skipped. It stops at EOF, when ctx is
// done, or on the first ErrUnknownMessage.
func (s *Server) Serve(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var req Envelope
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			log.Printf("warning: skipping malformed message: %v", err)
			continue
		}
		resp, err := s.Handle(req)
		if err != nil {
			return err
		}
		if err := s.Send(resp); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading messages: %w", err)
	}
	return nil
}
