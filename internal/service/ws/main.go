// Package ws serves the websocket query surface: request-response reads
// of order books and single orders, plus push updates for everything a
// session has queried before.
package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/broadcast"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
)

type Opts struct {
	Log      *logan.Entry
	Addr     string
	Book     data.OrderBook
	Notifier *broadcast.Notifier
}

type Server struct {
	log      *logan.Entry
	addr     string
	book     data.OrderBook
	notifier *broadcast.Notifier
	upgrader websocket.Upgrader
}

func New(opts Opts) *Server {
	return &Server{
		log:      opts.Log,
		addr:     opts.Addr,
		book:     opts.Book,
		notifier: opts.Notifier,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)

	srv := &http.Server{Addr: s.addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	s.log.WithField("addr", s.addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "websocket server failed")
	}
	return nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("failed to upgrade connection")
		return
	}

	sess := &session{
		log:    s.log.WithField("remote", conn.RemoteAddr().String()),
		book:   s.book,
		conn:   conn,
		books:  make(map[string]data.BookPrefix),
		orders: make(map[string]data.OrderKey),
	}
	sub := s.notifier.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		sess.pushLoop(sub)
	}()

	sess.readLoop()
	sub.Close()
	<-done
	_ = conn.Close()
}

// session is one websocket connection. Every book and order it has
// queried stays in its watched sets, and subsequent index changes to
// those are pushed as fresh full responses.
type session struct {
	log  *logan.Entry
	book data.OrderBook
	conn *websocket.Conn

	writeMu sync.Mutex

	watchMu sync.Mutex
	books   map[string]data.BookPrefix
	orders  map[string]data.OrderKey
}

func (s *session) readLoop() {
	for {
		var req request
		if err := s.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.WithError(err).Debug("connection read failed")
			}
			return
		}

		if err := s.serve(req); err != nil {
			s.log.WithError(err).WithField("request", req.Type).Warn("failed to serve request")
			_ = s.send(errorResponse{Type: responseError, Error: err.Error()})
		}
	}
}

func (s *session) serve(req request) error {
	switch req.Type {
	case requestOrderBook:
		prefix, err := bookPrefixFromRequest(req)
		if err != nil {
			return err
		}
		s.watchBook(prefix)
		return s.sendBook(prefix)
	case requestOrder:
		key, err := orderKeyFromRequest(req)
		if err != nil {
			return err
		}
		s.watchOrder(key)
		return s.sendOrder(key)
	default:
		return errors.Errorf("unknown request type %q", req.Type)
	}
}

func (s *session) pushLoop(sub *broadcast.Subscription) {
	for u := range sub.Updates() {
		if sub.Lagged() {
			// The buffer overflowed, so some updates are unknown. Tell the
			// client and replay everything it watches.
			_ = s.send(resyncResponse{Type: responseResync})
			s.pushAll()
			continue
		}
		s.push(u)
	}
}

// pushAll re-sends every watched book and order.
func (s *session) pushAll() {
	s.watchMu.Lock()
	books := make([]data.BookPrefix, 0, len(s.books))
	for _, p := range s.books {
		books = append(books, p)
	}
	orders := make([]data.OrderKey, 0, len(s.orders))
	for _, k := range s.orders {
		orders = append(orders, k)
	}
	s.watchMu.Unlock()

	for _, p := range books {
		if err := s.sendBook(p); err != nil {
			s.log.WithError(err).Warn("failed to push order book")
		}
	}
	for _, k := range orders {
		if err := s.sendOrder(k); err != nil {
			s.log.WithError(err).Warn("failed to push order")
		}
	}
}

func (s *session) push(u broadcast.Update) {
	s.watchMu.Lock()
	var (
		book  *data.BookPrefix
		order *data.OrderKey
	)
	if u.Book != nil {
		if p, ok := s.books[string(u.Book.Encode())]; ok {
			book = &p
		}
	}
	if u.Order != nil {
		if k, ok := s.orders[string(u.Order.Encode())]; ok {
			order = &k
		}
	}
	s.watchMu.Unlock()

	if book != nil {
		if err := s.sendBook(*book); err != nil {
			s.log.WithError(err).Warn("failed to push order book")
		}
	}
	if order != nil {
		if err := s.sendOrder(*order); err != nil {
			s.log.WithError(err).Warn("failed to push order")
		}
	}
}

func (s *session) watchBook(p data.BookPrefix) {
	s.watchMu.Lock()
	s.books[string(p.Encode())] = p
	s.watchMu.Unlock()
}

func (s *session) watchOrder(k data.OrderKey) {
	s.watchMu.Lock()
	s.orders[string(k.Encode())] = k
	s.watchMu.Unlock()
}

func (s *session) sendBook(prefix data.BookPrefix) error {
	entries, err := s.book.Book(prefix)
	if err != nil {
		return errors.Wrap(err, "failed to scan order book")
	}

	resp := orderBookResponse{
		Type:        responseOrderBook,
		SellChainID: uint32(prefix.SellChainID),
		SellAssetID: prefix.SellAssetID.String(),
		BuyChainID:  uint32(prefix.BuyChainID),
		BuyAssetID:  prefix.BuyAssetID.String(),
		OrderBook:   make([]orderPayload, 0, len(entries)),
	}
	for _, e := range entries {
		resp.OrderBook = append(resp.OrderBook, newOrderPayload(e.OrderID, e.Static, e.Value))
	}
	return s.send(resp)
}

func (s *session) sendOrder(key data.OrderKey) error {
	order, err := s.book.Order(key)
	if err != nil {
		return errors.Wrap(err, "failed to get order")
	}
	if order == nil {
		return errors.Errorf("order %s is not known", key.OrderID)
	}

	locks, err := s.book.OrderLocks(key)
	if err != nil {
		return errors.Wrap(err, "failed to list order locks")
	}

	resp := orderResponse{
		Type:      responseOrder,
		ChainID:   uint32(key.ChainID),
		AdapterID: uint32(key.AdapterID),
		Order:     newOrderPayload(key.OrderID, order.Static, order.Value),
		Locks:     make([]lockPayload, 0, len(locks)),
	}
	for _, l := range locks {
		resp.Locks = append(resp.Locks, newLockPayload(l))
	}
	return s.send(resp)
}

func (s *session) send(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

func bookPrefixFromRequest(req request) (data.BookPrefix, error) {
	sellAsset, err := data.ParseAssetID(req.SellAssetID)
	if err != nil {
		return data.BookPrefix{}, errors.Wrap(err, "invalid sell asset id")
	}
	buyAsset, err := data.ParseAssetID(req.BuyAssetID)
	if err != nil {
		return data.BookPrefix{}, errors.Wrap(err, "invalid buy asset id")
	}
	return data.BookPrefix{
		SellChainID: data.ChainID(req.SellChainID),
		SellAssetID: sellAsset,
		BuyChainID:  data.ChainID(req.BuyChainID),
		BuyAssetID:  buyAsset,
	}, nil
}

func orderKeyFromRequest(req request) (data.OrderKey, error) {
	id, err := data.ParseOrderID(req.OrderID)
	if err != nil {
		return data.OrderKey{}, errors.Wrap(err, "invalid order id")
	}
	return data.OrderKey{
		ChainID:   data.ChainID(req.ChainID),
		AdapterID: data.AdapterID(req.AdapterID),
		OrderID:   id,
	}, nil
}
