package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/cheese-chess-client/internal/clientbuilder"
	appcfg "github.com/park285/cheese-chess-client/internal/config"
	"github.com/park285/cheese-chess-client/internal/journal"
	"github.com/park285/cheese-chess-client/internal/obslog"
	"github.com/park285/cheese-chess-client/internal/presenter"
	"github.com/park285/cheese-chess-client/internal/protocol"
	"github.com/park285/cheese-chess-client/internal/session"
	"github.com/park285/cheese-chess-client/pkg/sessiondto"
	"go.uber.org/zap"
)

func main() {
	var (
		join    = flag.String("join", "", "join an existing room by id")
		create  = flag.Bool("create", false, "create a room and wait for an opponent")
		bot     = flag.Bool("bot", false, "play against the server bot")
		resume  = flag.Bool("resume", false, "rejoin the last unfinished room from the Redis journal")
		envFile = flag.String("env", "", "load environment from this file")
		results = flag.Int("results", 0, "print the last N finished games and exit")
	)
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := appcfg.Load(files...)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := clientbuilder.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := deps.Close(cctx); err != nil {
			logger.Warn("deps_close", zap.Error(err))
		}
	}()

	if *results > 0 {
		printResults(ctx, deps, *results)
		return
	}

	intent := session.Intent{JoinRoomID: *join, Create: *create, Bot: *bot}
	if *resume && intent.JoinRoomID == "" {
		room, err := deps.LastRoom(ctx)
		switch {
		case err != nil:
			log.Fatalf("resume error: %v", err)
		case room == "":
			log.Fatalf("resume: no unfinished game in the journal")
		}
		intent.JoinRoomID = room
	}
	if _, ok := intent.Message(); !ok {
		log.Fatalf("one of -join, -create, -bot or -resume is required")
	}

	p := presenter.NewPresenter(os.Stdout)
	eng, err := session.Start(ctx, deps.SessionConfig(intent, p.View, p.Notice))
	if err != nil {
		log.Fatalf("session error: %v", err)
	}
	p.Help()

	lines := make(chan string)
	go readLines(lines)

	confirmResign := false
	for {
		select {
		case <-ctx.Done():
			closeEngine(eng, logger)
			return
		case <-eng.Done():
			return
		case line, ok := <-lines:
			if !ok {
				closeEngine(eng, logger)
				return
			}
			a, err := parseLine(line)
			if err != nil {
				p.Line(err.Error())
				continue
			}
			if a.kind == actQuit {
				closeEngine(eng, logger)
				return
			}
			confirmResign = run(eng, p, a, confirmResign)
		}
	}
}

// game is the part of *session.Engine the command loop drives.
type game interface {
	ProposeMove(from, to string) error
	ChoosePromotion(piece protocol.PromotionPiece) error
	Select(square string) error
	SendChat(text string) error
	OfferDraw() error
	RespondDraw(accept bool) error
	Resign(confirmed bool) error
	View() sessiondto.View
}

var _ game = (*session.Engine)(nil)

// run applies one action. It returns whether a resignation is waiting for "yes".
func run(eng game, p *presenter.Presenter, a action, confirmResign bool) bool {
	var err error
	switch a.kind {
	case actNone:
		return confirmResign
	case actMove:
		err = eng.ProposeMove(a.from, a.to)
		// a suffix like the q in e2e4q only matters when the move promotes
		if err == nil && a.promo != "" && eng.View().Status == string(session.StatusAwaitingPromotion) {
			err = eng.ChoosePromotion(a.promo)
		}
	case actSelect:
		err = eng.Select(a.square)
	case actPromote:
		err = eng.ChoosePromotion(a.promo)
	case actChat:
		err = eng.SendChat(a.text)
	case actDraw:
		err = eng.OfferDraw()
	case actAccept:
		err = eng.RespondDraw(true)
	case actDecline:
		err = eng.RespondDraw(false)
	case actResign:
		p.Line("Resign this game? Type `yes` to confirm.")
		return true
	case actConfirm:
		if !confirmResign {
			return false
		}
		err = eng.Resign(true)
	case actStatus:
		p.Status()
	case actHelp:
		p.Help()
	}
	if err != nil {
		p.Line(errText(err))
	}
	return false
}

func errText(err error) string {
	switch {
	case errors.Is(err, session.ErrInputDisabled):
		return "It is not your turn."
	case errors.Is(err, session.ErrPromotionPending):
		return "Choose a promotion piece first: promote queen|rook|bishop|knight."
	case errors.Is(err, session.ErrIllegalMove):
		return "Illegal move."
	case errors.Is(err, session.ErrNotAwaitingPromotion):
		return "No promotion is waiting for a choice."
	case errors.Is(err, session.ErrInvalidPromotion):
		return "Promote to queen, rook, bishop or knight."
	case errors.Is(err, session.ErrNoDrawOffer):
		return "There is no draw offer to answer."
	case errors.Is(err, session.ErrGameOver):
		return "The game is over."
	case errors.Is(err, session.ErrClosed):
		return "The session is closed."
	default:
		return err.Error()
	}
}

func readLines(out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		out <- sc.Text()
	}
}

func closeEngine(eng *session.Engine, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := eng.Close(ctx); err != nil {
		logger.Warn("session_close", zap.Error(err))
	}
}

func printResults(ctx context.Context, deps *clientbuilder.Deps, n int) {
	res, err := deps.Results(ctx, n)
	if err != nil {
		log.Fatalf("results error: %v", err)
	}
	if len(res) == 0 {
		fmt.Println("no finished games recorded")
		return
	}
	for _, r := range res {
		fmt.Printf("%s  %-7s %s  room=%s as %s  %s vs %s\n",
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			journal.PGNResult(r.Result), r.Reason, r.RoomID, r.Color, r.WhiteName, r.BlackName)
	}
}
