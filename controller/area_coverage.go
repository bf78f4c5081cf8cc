package controller

import (
	"context"
	"fmt"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/coverage"
	"github.com/openswarm-io/skysweep/geo"
	"github.com/openswarm-io/skysweep/swarm"
)

// State of the per-agent coverage machine.
type State int

const (
	StateUnassigned State = iota
	StateInitializing
	StateCovering
	StateDone
)

func (s State) String() string {
	switch s {
	case StateUnassigned:
		return "unassigned"
	case StateInitializing:
		return "initializing"
	case StateCovering:
		return "covering"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// AreaCoverageController is the agent-local state machine driving one
// agent's coverage episode. One instance exists per agent; several instances
// can share a process (and an in-memory board) for tests and simulation.
//
// Tick never blocks. Waiting for a condition - an assignment appearing, a
// target being reached - is expressed by returning and re-evaluating on the
// next tick. Transient ranking failures keep the machine in Initializing;
// only malformed regions abort the operation that read them.
type AreaCoverageController struct {
	id        int
	store     core.KnowledgeStore
	cfg       *core.Config
	logger    core.Logger
	telemetry core.Telemetry

	state          State
	areaID         int
	activeStrategy coverage.Strategy
	strategyName   string

	// minTime is cached for the lifetime of the controller: the MinTime
	// grid carries mission-long recency state that must survive strategy
	// switches away and back.
	minTime *coverage.MinTime

	cellInitialized bool
	cell            geo.Region
	hasTarget       bool
	target          geo.Position
	ticksOnTarget   int
}

// NewAreaCoverageController creates the controller for one agent.
func NewAreaCoverageController(cfg *core.Config, store core.KnowledgeStore, logger core.Logger, telemetry core.Telemetry) *AreaCoverageController {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	if telemetry == nil {
		telemetry = &core.NoOpTelemetry{}
	}
	return &AreaCoverageController{
		id:        cfg.AgentID,
		store:     store,
		cfg:       cfg,
		logger:    logger,
		telemetry: telemetry,
		state:     StateUnassigned,
		areaID:    swarm.Unassigned,
	}
}

// State exposes the current machine state for tests and diagnostics.
func (c *AreaCoverageController) State() State { return c.state }

// Cell returns the currently assigned cell; valid only after
// initialization.
func (c *AreaCoverageController) Cell() geo.Region { return c.cell }

// Register hooks the controller's Tick into the evaluation engine.
func (c *AreaCoverageController) Register(ev core.Evaluator) {
	ev.Register(fmt.Sprintf("device.%d.area_coverage", c.id), c.Tick)
}

// Tick runs one evaluation step. Every step completes without blocking or
// defers to the next tick.
func (c *AreaCoverageController) Tick(ctx context.Context) error {
	areaID, requested, err := c.readAssignment(ctx)
	if err != nil {
		return err
	}

	if areaID == swarm.Unassigned || requested == "" {
		if c.state != StateUnassigned {
			c.logger.Info("Assignment cleared", map[string]interface{}{
				"agent": c.id,
			})
			c.reset()
		}
		return nil
	}

	// A new area or a new requested strategy re-enters initialization with
	// a fresh strategy instance. Partially covered cell progress is lost by
	// design.
	if areaID != c.areaID || (c.cellInitialized && requested != c.strategyName) {
		if c.state != StateUnassigned {
			c.logger.Info("Re-initializing coverage", map[string]interface{}{
				"agent":    c.id,
				"area_id":  areaID,
				"strategy": requested,
			})
		}
		c.reset()
		c.areaID = areaID
		c.state = StateInitializing
	}

	switch c.state {
	case StateInitializing:
		return c.initialize(ctx, requested)
	case StateCovering:
		return c.cover(ctx)
	case StateDone:
		return nil
	}
	return nil
}

func (c *AreaCoverageController) reset() {
	c.state = StateUnassigned
	c.areaID = swarm.Unassigned
	c.activeStrategy = nil
	c.strategyName = ""
	c.cellInitialized = false
	c.cell = geo.Region{}
	c.hasTarget = false
	c.ticksOnTarget = 0
}

func (c *AreaCoverageController) readAssignment(ctx context.Context) (int, string, error) {
	areaID, set, err := core.GetInt(ctx, c.store, core.KeyAssignedArea(c.id))
	if err != nil {
		return swarm.Unassigned, "", err
	}
	if !set || areaID < 0 {
		return swarm.Unassigned, "", nil
	}
	requested, err := c.store.Get(ctx, core.KeyCoverageRequested(c.id))
	if err != nil {
		return swarm.Unassigned, "", err
	}
	return areaID, requested, nil
}

// initialize computes this agent's rank and cell, publishes the cell bounds
// and the assigned altitude, and commands the climb. Transient ranking
// failures (no eligible peers yet, own record not replicated yet) leave the
// machine in Initializing to retry on the next tick.
func (c *AreaCoverageController) initialize(ctx context.Context, requested string) error {
	ctx, span := c.telemetry.StartSpan(ctx, "area_coverage.initialize")
	defer span.End()
	span.SetAttribute("agent", c.id)
	span.SetAttribute("area", c.areaID)

	area, err := c.readAreaRegion(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	rank, peerCount, err := c.rank(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	strategy, err := c.buildStrategy(ctx, requested)
	if err != nil {
		span.RecordError(err)
		return err
	}

	cell, err := strategy.Initialize(rank, area, peerCount)
	if err != nil {
		span.RecordError(err)
		return err
	}

	// Publish the cell bounds and the altitude assignment as one batch.
	if err := core.SetFloat(ctx, c.store, core.KeyCellTopLeftLat(c.id), cell.TopLeft.Lat, core.Deferred()); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, c.store, core.KeyCellTopLeftLon(c.id), cell.TopLeft.Lon, core.Deferred()); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, c.store, core.KeyCellBotRightLat(c.id), cell.BottomRight.Lat, core.Deferred()); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, c.store, core.KeyCellBotRightLon(c.id), cell.BottomRight.Lon, core.Deferred()); err != nil {
		return err
	}

	altitude, err := c.assignAltitude(ctx, rank)
	if err != nil {
		return err
	}
	if err := core.SetBool(ctx, c.store, core.KeyCoverageCompleted(c.id), false, core.Deferred()); err != nil {
		return err
	}
	if err := c.store.Flush(ctx); err != nil {
		return err
	}

	c.activeStrategy = strategy
	c.strategyName = requested
	c.cell = cell
	c.cellInitialized = true
	c.hasTarget = false
	c.state = StateCovering

	c.telemetry.RecordMetric("coverage.initialized", 1, map[string]string{
		"strategy": requested,
	})
	c.logger.Info("Coverage cell initialized", map[string]interface{}{
		"agent":    c.id,
		"area_id":  c.areaID,
		"strategy": requested,
		"rank":     rank,
		"peers":    peerCount,
		"cell":     cell.String(),
		"altitude": altitude,
	})
	return nil
}

// assignAltitude publishes the rank-derived altitude and the climb command.
// Vertical separation is what lets concurrently-covering agents share the
// horizontal plane without negotiating collision avoidance.
func (c *AreaCoverageController) assignAltitude(ctx context.Context, rank int) (float64, error) {
	minAltitude := c.cfg.Coverage.MinAltitude
	if v, set, err := core.GetFloat(ctx, c.store, core.KeyMinAltitude); err != nil {
		return 0, err
	} else if set {
		minAltitude = v
	}
	spacing := c.cfg.Coverage.AltitudeSpacing
	if v, set, err := core.GetFloat(ctx, c.store, core.KeyAltitudeSpacing); err != nil {
		return 0, err
	} else if set {
		spacing = v
	}

	altitude := minAltitude + spacing*float64(rank)
	if err := core.SetFloat(ctx, c.store, core.KeyAssignedAltitude(c.id), altitude, core.Deferred()); err != nil {
		return 0, err
	}
	if err := core.SetFloat(ctx, c.store, core.KeyMoveTargetAlt(c.id), altitude, core.Deferred()); err != nil {
		return 0, err
	}
	if err := c.store.Set(ctx, core.KeyDeviceCommand(c.id), core.CmdMoveToAltitude, core.Deferred()); err != nil {
		return 0, err
	}
	return altitude, nil
}

// cover advances the waypoint sequence whenever the previous target has been
// reached, and finishes the episode when the sequence is exhausted.
func (c *AreaCoverageController) cover(ctx context.Context) error {
	position, known, err := c.ownPosition(ctx)
	if err != nil {
		return err
	}
	if known {
		if aware, ok := c.activeStrategy.(coverage.PositionAware); ok {
			aware.UpdatePosition(position)
		}
	}

	if !c.hasTarget {
		return c.advanceTarget(ctx)
	}

	reached := false
	if known {
		reached, err = geo.DistanceReached(position, c.target, c.cfg.Coverage.ReachedAccuracy)
		if err != nil {
			return err
		}
	}

	if !reached {
		c.ticksOnTarget++
		if c.cfg.Coverage.TargetTimeoutTicks > 0 && c.ticksOnTarget >= c.cfg.Coverage.TargetTimeoutTicks {
			c.logger.Warn("Target not reached within tick budget, skipping", map[string]interface{}{
				"agent":  c.id,
				"target": c.target.String(),
				"ticks":  c.ticksOnTarget,
			})
			c.telemetry.RecordMetric("coverage.targets_skipped", 1, nil)
			return c.advanceTarget(ctx)
		}
		return nil
	}

	if c.activeStrategy.IsFinalTarget() {
		return c.finish(ctx)
	}
	return c.advanceTarget(ctx)
}

// advanceTarget pulls the next waypoint and publishes it both as the agent's
// bookkeeping fields and as a movement command.
func (c *AreaCoverageController) advanceTarget(ctx context.Context) error {
	target, err := c.activeStrategy.NextTarget()
	if err != nil {
		if core.IsTerminal(err) {
			return c.finish(ctx)
		}
		return err
	}

	if err := core.SetFloat(ctx, c.store, core.KeyNextTargetLat(c.id), target.Lat, core.Deferred()); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, c.store, core.KeyNextTargetLon(c.id), target.Lon, core.Deferred()); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, c.store, core.KeyMoveTargetLat(c.id), target.Lat, core.Deferred()); err != nil {
		return err
	}
	if err := core.SetFloat(ctx, c.store, core.KeyMoveTargetLon(c.id), target.Lon, core.Deferred()); err != nil {
		return err
	}
	if err := c.store.Set(ctx, core.KeyDeviceCommand(c.id), core.CmdMoveToGPS, core.Deferred()); err != nil {
		return err
	}
	if err := c.store.Flush(ctx); err != nil {
		return err
	}

	c.target = target
	c.hasTarget = true
	c.ticksOnTarget = 0
	c.telemetry.RecordMetric("coverage.targets_published", 1, nil)
	c.logger.Debug("New coverage target", map[string]interface{}{
		"agent":  c.id,
		"target": target.String(),
	})
	return nil
}

func (c *AreaCoverageController) finish(ctx context.Context) error {
	if err := core.SetBool(ctx, c.store, core.KeyCoverageCompleted(c.id), true); err != nil {
		return err
	}
	c.state = StateDone
	c.telemetry.RecordMetric("coverage.completed", 1, nil)
	c.logger.Info("Coverage complete", map[string]interface{}{
		"agent":   c.id,
		"area_id": c.areaID,
	})
	return nil
}

func (c *AreaCoverageController) readAreaRegion(ctx context.Context) (geo.Region, error) {
	regionID, set, err := core.GetInt(ctx, c.store, core.KeyAreaRegion(c.areaID))
	if err != nil {
		return geo.Region{}, err
	}
	if !set {
		return geo.Region{}, fmt.Errorf("%w: area %d", core.ErrAreaNotFound, c.areaID)
	}
	return readRegion(ctx, c.store, regionID)
}

func (c *AreaCoverageController) rank(ctx context.Context) (int, int, error) {
	raw, err := c.store.Get(ctx, core.KeySwarmDeviceIDs)
	if err != nil {
		return 0, 0, err
	}
	ids, err := ParseRoster(raw)
	if err != nil {
		return 0, 0, err
	}
	if len(ids) == 0 {
		return 0, 0, fmt.Errorf("%w: empty roster", core.ErrNoAgents)
	}

	agents, err := swarm.LoadAgents(ctx, c.store, ids)
	if err != nil {
		return 0, 0, err
	}
	return swarm.Rank(c.id, c.areaID, agents)
}

// buildStrategy constructs a fresh strategy instance, honoring the
// fleet-wide line width if the mission controller published one. MinTime is
// the exception: its instance is reused so the recency grid survives
// switches.
func (c *AreaCoverageController) buildStrategy(ctx context.Context, name string) (coverage.Strategy, error) {
	lineWidth := c.cfg.Coverage.LineWidth
	if v, set, err := core.GetFloat(ctx, c.store, core.KeyCoverageLineWidth); err != nil {
		return nil, err
	} else if set && v > 0 {
		lineWidth = v
	}

	cfg := coverage.Config{
		LineWidth:          lineWidth,
		MinTimeDelta:       c.cfg.Coverage.MinTimeDelta,
		RandomTargetBudget: c.cfg.Coverage.RandomTargetBudget,
		SubdivideRandom:    c.cfg.Coverage.SubdivideRandom,
	}

	if name == coverage.StrategyMinTime {
		if c.minTime == nil {
			c.minTime = coverage.NewMinTime(cfg)
		}
		return c.minTime, nil
	}
	return coverage.New(name, cfg)
}

// ownPosition reads the agent's replicated position. Before the first
// telemetry write the position is unknown and no reach check can succeed.
func (c *AreaCoverageController) ownPosition(ctx context.Context) (geo.Position, bool, error) {
	lat, set, err := core.GetFloat(ctx, c.store, core.KeyDeviceLat(c.id))
	if err != nil || !set {
		return geo.Position{}, false, err
	}
	lon, _, err := core.GetFloat(ctx, c.store, core.KeyDeviceLon(c.id))
	if err != nil {
		return geo.Position{}, false, err
	}
	return geo.Position{Lat: lat, Lon: lon}, true, nil
}
