package engine

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// Oracle reviews a proposed bid before it is returned. Implementations may
// veto or rewrite the bid; the default passes everything through. Oracle
// internals (double-dummy, Monte-Carlo) are outside this engine.
type Oracle interface {
	Review(proposed bridge.Bid, explanation string, hand *bridge.Hand, auction *bridge.Auction, fv FeatureVector) (bridge.Bid, string)
}

// NoopOracle is the pass-through default.
type NoopOracle struct{}

// Review returns the proposed bid unchanged.
func (NoopOracle) Review(proposed bridge.Bid, explanation string, _ *bridge.Hand, _ *bridge.Auction, _ FeatureVector) (bridge.Bid, string) {
	return proposed, explanation
}

// ExecOracleOption configures an ExecOracle before launch.
type ExecOracleOption func(*ExecOracle)

// WithReviewTimeout sets the deadline for one review exchange. On timeout
// the proposed bid stands unmodified.
func WithReviewTimeout(d time.Duration) ExecOracleOption {
	return func(o *ExecOracle) {
		o.timeout = d
	}
}

// ExecOracle delegates review to an external simulator process speaking a
// line protocol on stdin/stdout:
//
//	-> bbo
//	<- bbook
//	-> isready
//	<- readyok
//	-> review <hand> <dealer> <auction|-> <bid>
//	<- bestbid <bid> [explanation...]
//
// Any protocol or process failure is advisory-only: the proposed bid is
// returned unchanged and the failure logged.
type ExecOracle struct {
	enginePath string
	timeout    time.Duration

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner

	mu     sync.Mutex
	closed bool
	exited chan struct{}
}

// NewExecOracle spawns the simulator process and performs the handshake.
func NewExecOracle(enginePath string, opts ...ExecOracleOption) (*ExecOracle, error) {
	o := &ExecOracle{
		enginePath: enginePath,
		timeout:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := o.start(); err != nil {
		return nil, fmt.Errorf("oracle: start engine: %w", err)
	}
	if err := o.handshake(); err != nil {
		o.Close()
		return nil, fmt.Errorf("oracle: handshake: %w", err)
	}
	return o, nil
}

// Review sends the position to the simulator and returns its verdict. Every
// failure path returns the proposed bid unchanged; the oracle is advisory.
func (o *ExecOracle) Review(proposed bridge.Bid, explanation string, hand *bridge.Hand, auction *bridge.Auction, _ FeatureVector) (bridge.Bid, string) {
	o.mu.Lock()
	closed := o.closed
	o.mu.Unlock()
	if closed || !o.isAlive() {
		return proposed, explanation
	}

	calls := "-"
	if len(auction.Calls) > 0 {
		calls = strings.ReplaceAll(auction.String(), " ", ",")
	}
	o.send(fmt.Sprintf("review %s %s %s %s", hand, auction.Dealer, calls, proposed))

	line, err := o.readLine("bestbid ", o.timeout)
	if err != nil {
		log.Warn().Err(err).Msg("Oracle review failed; proposed bid stands")
		return proposed, explanation
	}

	fields := strings.Fields(strings.TrimPrefix(line, "bestbid "))
	if len(fields) == 0 {
		return proposed, explanation
	}
	bid, err := bridge.ParseBid(fields[0])
	if err != nil {
		log.Warn().Str("response", line).Msg("Oracle returned unparsable bid; proposed bid stands")
		return proposed, explanation
	}
	if bid == proposed {
		return proposed, explanation
	}
	reason := explanation
	if len(fields) > 1 {
		reason = strings.Join(fields[1:], " ")
	} else {
		reason = fmt.Sprintf("%s (adjusted on simulation review)", explanation)
	}
	return bid, reason
}

// Close sends quit and waits briefly for process exit before killing it.
func (o *ExecOracle) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	if o.stdin != nil {
		fmt.Fprintf(o.stdin, "quit\n")
	}
	o.closed = true
	o.mu.Unlock()

	if o.stdin != nil {
		o.stdin.Close()
	}
	if o.exited != nil {
		select {
		case <-o.exited:
		case <-time.After(3 * time.Second):
			log.Warn().Msg("Oracle engine did not exit within 3s, killing")
			if o.cmd != nil && o.cmd.Process != nil {
				o.cmd.Process.Kill()
			}
			<-o.exited
		}
	}
	return nil
}

func (o *ExecOracle) start() error {
	o.cmd = exec.Command(o.enginePath)

	var err error
	o.stdin, err = o.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := o.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	o.scanner = bufio.NewScanner(stdout)
	o.exited = make(chan struct{})

	if err := o.cmd.Start(); err != nil {
		return fmt.Errorf("start process: %w", err)
	}
	go func() {
		o.cmd.Wait()
		close(o.exited)
	}()
	return nil
}

func (o *ExecOracle) handshake() error {
	o.send("bbo")
	if _, err := o.readLine("bbook", o.timeout); err != nil {
		return fmt.Errorf("waiting for bbook: %w", err)
	}
	o.send("isready")
	if _, err := o.readLine("readyok", o.timeout); err != nil {
		return fmt.Errorf("waiting for readyok: %w", err)
	}
	return nil
}

func (o *ExecOracle) send(line string) {
	fmt.Fprintf(o.stdin, "%s\n", line)
}

// readLine reads until a line with the given prefix appears or the timeout
// elapses. Other lines (info chatter) are skipped.
func (o *ExecOracle) readLine(prefix string, timeout time.Duration) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		for o.scanner.Scan() {
			line := o.scanner.Text()
			if strings.HasPrefix(line, prefix) {
				ch <- result{line: line}
				return
			}
		}
		if err := o.scanner.Err(); err != nil {
			ch <- result{err: fmt.Errorf("scanner: %w", err)}
			return
		}
		ch <- result{err: fmt.Errorf("engine closed stdout")}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-time.After(timeout):
		return "", fmt.Errorf("timeout waiting for %q", prefix)
	}
}

func (o *ExecOracle) isAlive() bool {
	select {
	case <-o.exited:
		return false
	default:
		return true
	}
}
