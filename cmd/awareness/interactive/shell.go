// Package interactive provides the interactive command-line interface
// for the awareness bridge.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
	"github.com/Mauin/ReactiveAwareness/pkg/fence"
	"github.com/Mauin/ReactiveAwareness/pkg/persistence"
	"github.com/Mauin/ReactiveAwareness/pkg/sim"
	"github.com/Mauin/ReactiveAwareness/pkg/snapshot"
	"github.com/Mauin/ReactiveAwareness/pkg/wire"
	"github.com/chzyer/readline"
)

// Deps are the components the shell drives.
type Deps struct {
	Engine   *fence.Engine
	Snapshot *snapshot.Snapshot
	Store    *persistence.RegistrationStore

	// Sim, if set, enables the sim commands.
	Sim *sim.Service
}

// Shell handles interactive mode.
type Shell struct {
	deps Deps
	rl   *readline.Instance
	out  io.Writer

	mu      sync.Mutex
	streams map[string]*fence.Stream
	wg      sync.WaitGroup
}

// New creates a shell reading from the terminal.
func New(deps Deps) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "awareness> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s := newShell(deps, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(deps Deps, out io.Writer) *Shell {
	return &Shell{
		deps:    deps,
		out:     out,
		streams: make(map[string]*fence.Stream),
	}
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("weather"),
		readline.PcItem("temperature"),
		readline.PcItem("location"),
		readline.PcItem("activity"),
		readline.PcItem("headphones"),
		readline.PcItem("places"),
		readline.PcItem("beacons"),
		readline.PcItem("observe"),
		readline.PcItem("cancel"),
		readline.PcItem("streams"),
		readline.PcItem("register"),
		readline.PcItem("unregister"),
		readline.PcItem("query"),
		readline.PcItem("registrations"),
		readline.PcItem("sim",
			readline.PcItem("headphones", readline.PcItem("on"), readline.PcItem("off")),
			readline.PcItem("activity"),
			readline.PcItem("flag"),
			readline.PcItem("trigger"),
			readline.PcItem("suspend"),
			readline.PcItem("fail-connect"),
			readline.PcItem("fences"),
		),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Stdout returns a writer that coordinates with the readline prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run starts the interactive command loop. Open streams are closed when
// it returns.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()
	defer s.closeAll()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if !s.execute(ctx, line) {
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}
	}
}

// execute runs one command line. It returns false when the shell should
// exit.
func (s *Shell) execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "weather", "w":
		s.cmdWeather(ctx)
	case "temperature", "temp":
		s.cmdTemperature(ctx, args)
	case "location", "loc":
		s.cmdLocation(ctx)
	case "activity", "act":
		s.cmdActivity(ctx, args)
	case "headphones", "hp":
		s.cmdHeadphones(ctx)
	case "places":
		s.cmdPlaces(ctx)
	case "beacons":
		s.cmdBeacons(ctx, args)

	case "observe", "o":
		s.cmdObserve(ctx, args)
	case "cancel":
		s.cmdCancel(args)
	case "streams":
		s.cmdStreams()

	case "register", "reg":
		s.cmdRegister(ctx, args)
	case "unregister", "unreg":
		s.cmdUnregister(ctx, args)
	case "query":
		s.cmdQuery(ctx)
	case "registrations", "regs":
		s.cmdRegistrations()

	case "sim":
		s.cmdSim(args)

	case "quit", "exit", "q":
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Awareness Commands:
  Snapshot:
    weather              - Show current weather
    temperature [C|F]    - Show temperature, feels-like and dew point
    location             - Show position and speed
    activity [min%]      - Show detected activities (at least min% confidence)
    headphones           - Show whether headphones are plugged in
    places               - Show nearby places
    beacons [ns[/type]]  - Show nearby beacons, optionally filtered

  Conditions:
    observe <name> <cond>          - Watch a condition until canceled
    cancel <name>                  - Stop watching
    streams                        - List watched conditions
    register <name> <cond> [data]  - Register a persistent condition
    unregister <name>              - Remove a persistent condition
    query                          - Show states of all persistent conditions
    registrations                  - Show the local registration ledger

  Simulation:
    sim headphones on|off          - Plug or unplug headphones
    sim activity <type> [conf]     - Set the detected activity
    sim flag <key> on|off          - Set a service flag
    sim trigger <name> on|off      - Push a state for a condition
    sim suspend [reason]           - Suspend every connection
    sim fail-connect [reason]      - Fail connects (no reason: succeed again)
    sim fences                     - List conditions known to the service

  General:
    help                 - Show this help
    quit                 - Exit

  Condition Format:
    headphones:plugged, headphones:unplugged, activity:walking, flag:<key>
    combine with & and |, negate with ! (e.g. activity:walking&headphones:plugged)`)
}

func (s *Shell) printErr(err error) {
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

func (s *Shell) cmdWeather(ctx context.Context) {
	w, err := s.deps.Snapshot.Weather(ctx)
	if err != nil {
		s.printErr(err)
		return
	}
	conditions := make([]string, len(w.Conditions))
	for i, c := range w.Conditions {
		conditions[i] = c.String()
	}
	fmt.Fprintf(s.out, "Temperature: %.1f C (feels like %.1f C)\n", w.Temperature, w.FeelsLike)
	fmt.Fprintf(s.out, "Dew point:   %.1f C\n", w.DewPoint)
	fmt.Fprintf(s.out, "Humidity:    %d%%\n", w.Humidity)
	fmt.Fprintf(s.out, "Conditions:  %s\n", strings.Join(conditions, ", "))
}

func (s *Shell) cmdTemperature(ctx context.Context, args []string) {
	unit := snapshot.Celsius
	if len(args) > 0 {
		var err error
		if unit, err = snapshot.ParseTemperatureUnit(args[0]); err != nil {
			s.printErr(err)
			return
		}
	}

	temp, err := s.deps.Snapshot.Temperature(ctx, unit)
	if err != nil {
		s.printErr(err)
		return
	}
	feels, err := s.deps.Snapshot.FeelsLike(ctx, unit)
	if err != nil {
		s.printErr(err)
		return
	}
	dew, err := s.deps.Snapshot.DewPoint(ctx, unit)
	if err != nil {
		s.printErr(err)
		return
	}
	fmt.Fprintf(s.out, "%.1f %s (feels like %.1f %s, dew point %.1f %s)\n", temp, unit, feels, unit, dew, unit)
}

func (s *Shell) cmdLocation(ctx context.Context) {
	l, err := s.deps.Snapshot.Location(ctx)
	if err != nil {
		s.printErr(err)
		return
	}
	ll := snapshot.LatLng{Latitude: l.Latitude, Longitude: l.Longitude}
	fmt.Fprintf(s.out, "Position: %s (+/- %.0f m)\n", ll, l.Accuracy)
	fmt.Fprintf(s.out, "Speed:    %.1f m/s\n", l.Speed)
}

func (s *Shell) cmdActivity(ctx context.Context, args []string) {
	minConfidence := 0
	if len(args) > 0 {
		v, err := strconv.Atoi(strings.TrimSuffix(args[0], "%"))
		if err != nil || v < 0 || v > 100 {
			fmt.Fprintln(s.out, "Usage: activity [min%] (0-100)")
			return
		}
		minConfidence = v
	}

	activities, err := s.deps.Snapshot.ProbableActivitiesAbove(ctx, minConfidence)
	if err != nil {
		s.printErr(err)
		return
	}
	if len(activities) == 0 {
		fmt.Fprintln(s.out, "No activity detected")
		return
	}
	for _, a := range activities {
		fmt.Fprintf(s.out, "  %-12s %3d%%\n", a.Type, a.Confidence)
	}
}

func (s *Shell) cmdHeadphones(ctx context.Context) {
	plugged, err := s.deps.Snapshot.HeadphonesPluggedIn(ctx)
	if err != nil {
		s.printErr(err)
		return
	}
	if plugged {
		fmt.Fprintln(s.out, "Headphones plugged in")
	} else {
		fmt.Fprintln(s.out, "Headphones not plugged in")
	}
}

func (s *Shell) cmdPlaces(ctx context.Context) {
	places, err := s.deps.Snapshot.NearbyPlaces(ctx)
	if err != nil {
		s.printErr(err)
		return
	}
	if len(places) == 0 {
		fmt.Fprintln(s.out, "No places nearby")
		return
	}
	for _, p := range places {
		fmt.Fprintf(s.out, "  %-24s %5.1f%%  (%s)\n", p.Name, p.Likelihood*100, p.ID)
	}
}

func (s *Shell) cmdBeacons(ctx context.Context, args []string) {
	var types []awareness.BeaconType
	for _, arg := range args {
		ns, typ, _ := strings.Cut(arg, "/")
		types = append(types, awareness.BeaconType{Namespace: ns, Type: typ})
	}

	beacons, err := s.deps.Snapshot.Beacons(ctx, types...)
	if err != nil {
		s.printErr(err)
		return
	}
	if len(beacons) == 0 {
		fmt.Fprintln(s.out, "No beacons nearby")
		return
	}
	for _, b := range beacons {
		fmt.Fprintf(s.out, "  %s/%s: %q\n", b.Namespace, b.Type, b.Content)
	}
}

func (s *Shell) cmdObserve(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: observe <name> <condition>")
		return
	}
	name := args[0]
	cond, err := wire.ParseCondition(strings.Join(args[1:], ""))
	if err != nil {
		s.printErr(err)
		return
	}

	s.mu.Lock()
	_, exists := s.streams[name]
	s.mu.Unlock()
	if exists {
		fmt.Fprintf(s.out, "Already observing %s (cancel it first)\n", name)
		return
	}

	stream, err := s.deps.Engine.Observe(ctx, name, cond)
	if err != nil {
		s.printErr(err)
		return
	}

	s.mu.Lock()
	s.streams[name] = stream
	s.mu.Unlock()
	fmt.Fprintf(s.out, "Observing %s: %s\n", name, cond)

	s.wg.Add(1)
	go s.follow(stream)
}

// follow prints the states of stream until it ends.
func (s *Shell) follow(stream *fence.Stream) {
	defer s.wg.Done()

	for state := range stream.C() {
		fmt.Fprintf(s.out, "[FENCE] %s: %t\n", stream.Name(), state)
	}
	<-stream.Done()

	s.mu.Lock()
	if s.streams[stream.Name()] == stream {
		delete(s.streams, stream.Name())
	}
	s.mu.Unlock()

	if err := stream.Err(); err != nil {
		fmt.Fprintf(s.out, "[FENCE] %s ended: %v\n", stream.Name(), err)
	} else {
		fmt.Fprintf(s.out, "[FENCE] %s closed\n", stream.Name())
	}
}

func (s *Shell) cmdCancel(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: cancel <name>")
		return
	}
	s.mu.Lock()
	stream, ok := s.streams[args[0]]
	s.mu.Unlock()
	if !ok {
		fmt.Fprintf(s.out, "Not observing %s\n", args[0])
		return
	}
	stream.Close()
}

func (s *Shell) cmdStreams() {
	s.mu.Lock()
	names := make([]string, 0, len(s.streams))
	for name := range s.streams {
		names = append(names, name)
	}
	s.mu.Unlock()

	if len(names) == 0 {
		fmt.Fprintln(s.out, "No active streams")
		return
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(s.out, "  %s\n", name)
	}
}

func (s *Shell) closeAll() {
	s.mu.Lock()
	streams := make([]*fence.Stream, 0, len(s.streams))
	for _, st := range s.streams {
		streams = append(streams, st)
	}
	s.mu.Unlock()

	for _, st := range streams {
		st.Close()
	}
	s.wg.Wait()
}

func (s *Shell) cmdRegister(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: register <name> <condition> [data]")
		return
	}
	cond, err := wire.ParseCondition(args[1])
	if err != nil {
		s.printErr(err)
		return
	}
	var payload []byte
	if len(args) > 2 {
		payload = []byte(strings.Join(args[2:], " "))
	}

	if err := s.deps.Engine.RegisterPersistent(ctx, args[0], cond, payload); err != nil {
		s.printErr(err)
		return
	}
	fmt.Fprintf(s.out, "Registered %s: %s (delivered to %s)\n", args[0], cond, s.deps.Engine.DispatchAddress())
}

func (s *Shell) cmdUnregister(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: unregister <name>")
		return
	}
	if err := s.deps.Engine.UnregisterPersistent(ctx, args[0]); err != nil {
		s.printErr(err)
		return
	}
	fmt.Fprintf(s.out, "Unregistered %s\n", args[0])
}

func (s *Shell) cmdQuery(ctx context.Context) {
	states, err := s.deps.Engine.QueryPersistent(ctx)
	if err != nil {
		s.printErr(err)
		return
	}
	if len(states) == 0 {
		fmt.Fprintln(s.out, "No conditions registered")
		return
	}
	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(s.out, "  %-20s %t\n", name, states[name])
	}
}

func (s *Shell) cmdRegistrations() {
	if s.deps.Store == nil {
		fmt.Fprintln(s.out, "No registration ledger configured")
		return
	}
	regs := s.deps.Store.List()
	if len(regs) == 0 {
		fmt.Fprintln(s.out, "Ledger is empty")
		return
	}
	for _, r := range regs {
		last := "-"
		if r.LastState != nil {
			last = fmt.Sprintf("%t at %s", *r.LastState, r.LastUpdate.Format("15:04:05"))
		}
		cond := "(registered elsewhere)"
		if r.Condition.Kind != 0 {
			cond = r.Condition.String()
		}
		fmt.Fprintf(s.out, "  %-20s %-36s last: %s\n", r.Name, cond, last)
	}
}

var errNoSim = errors.New("not running against the simulated service")

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func (s *Shell) cmdSim(args []string) {
	if s.deps.Sim == nil {
		s.printErr(errNoSim)
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: sim <headphones|activity|flag|trigger|suspend|fail-connect|fences> ...")
		return
	}
	svc := s.deps.Sim

	switch args[0] {
	case "headphones":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "Usage: sim headphones on|off")
			return
		}
		on, err := parseOnOff(args[1])
		if err != nil {
			s.printErr(err)
			return
		}
		svc.SetHeadphones(on)

	case "activity":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: sim activity <type> [confidence]")
			return
		}
		t, err := wire.ParseActivity(args[1])
		if err != nil {
			s.printErr(err)
			return
		}
		confidence := 100
		if len(args) > 2 {
			if confidence, err = strconv.Atoi(args[2]); err != nil {
				s.printErr(err)
				return
			}
		}
		svc.SetActivity(t, confidence)

	case "flag":
		if len(args) != 3 {
			fmt.Fprintln(s.out, "Usage: sim flag <key> on|off")
			return
		}
		on, err := parseOnOff(args[2])
		if err != nil {
			s.printErr(err)
			return
		}
		svc.SetFlag(args[1], on)

	case "trigger":
		if len(args) != 3 {
			fmt.Fprintln(s.out, "Usage: sim trigger <name> on|off")
			return
		}
		on, err := parseOnOff(args[2])
		if err != nil {
			s.printErr(err)
			return
		}
		if err := svc.Trigger(args[1], on); err != nil {
			s.printErr(err)
			return
		}

	case "suspend":
		reason := "simulated suspension"
		if len(args) > 1 {
			reason = strings.Join(args[1:], " ")
		}
		svc.Suspend(reason)

	case "fail-connect":
		svc.FailConnect(strings.Join(args[1:], " "))

	case "fences":
		fences := svc.Fences()
		names := svc.FenceNames()
		if len(names) == 0 {
			fmt.Fprintln(s.out, "No conditions registered with the service")
			return
		}
		for _, name := range names {
			fmt.Fprintf(s.out, "  %-20s %s\n", name, fences[name])
		}
		return

	default:
		fmt.Fprintf(s.out, "Unknown sim command: %s\n", args[0])
		return
	}
	fmt.Fprintln(s.out, "OK")
}
