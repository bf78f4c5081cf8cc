package core

import "fmt"

// Hierarchical key schema for the shared store. Keys are opaque addresses to
// the store; the groupings below are the coordination core's vocabulary.
//
// Ownership: device.* keys (except assigned_area) are written by the owning
// agent. area.*, region.*, bridge.*, swarm.* and device.*.assigned_area are
// written by the mission controller. detection.* keys are written by the
// detecting agent.

// Movement command vocabulary. Commands are emitted into the store; the
// movement subsystem that executes them is an external collaborator.
const (
	CmdTakeoff        = "takeoff"
	CmdLand           = "land"
	CmdMoveToAltitude = "move_to_altitude"
	CmdMoveToGPS      = "move_to_gps"
)

// Fleet-wide keys.
const (
	KeySwarmCommand      = "swarm.movement_requested"
	KeySwarmDeviceIDs    = "swarm.device_ids"
	KeySwarmTotal        = "swarm.devices.total"
	KeyCommRange         = "swarm.comm_range"
	KeyMinAltitude       = "swarm.min_altitude"
	KeyAltitudeSpacing   = "swarm.altitude_spacing"
	KeyCoverageLineWidth = "swarm.area_coverage.line_width"
	KeyTotalSearchAreas  = "area.total"
	KeyTotalBridges      = "bridge.total"
	KeyBridgeRequested   = "bridge.requested"
)

// Per-device keys. The id is the agent's integer id.

func KeyDeviceLat(id int) string { return fmt.Sprintf("device.%d.location.latitude", id) }
func KeyDeviceLon(id int) string { return fmt.Sprintf("device.%d.location.longitude", id) }
func KeyDeviceAlt(id int) string { return fmt.Sprintf("device.%d.location.altitude", id) }

func KeyDeviceMobile(id int) string { return fmt.Sprintf("device.%d.mobile", id) }
func KeyDeviceBusy(id int) string   { return fmt.Sprintf("device.%d.busy", id) }

func KeyAssignedArea(id int) string     { return fmt.Sprintf("device.%d.assigned_area", id) }
func KeyAssignedAltitude(id int) string { return fmt.Sprintf("device.%d.assigned_altitude", id) }

// Per-device area-coverage bookkeeping, written by the owning agent.

func KeyCoverageRequested(id int) string {
	return fmt.Sprintf("device.%d.area_coverage.requested", id)
}

func KeyCoverageCompleted(id int) string {
	return fmt.Sprintf("device.%d.area_coverage.completed", id)
}

func KeyCellTopLeftLat(id int) string {
	return fmt.Sprintf("device.%d.area_coverage.cell.topleft.latitude", id)
}

func KeyCellTopLeftLon(id int) string {
	return fmt.Sprintf("device.%d.area_coverage.cell.topleft.longitude", id)
}

func KeyCellBotRightLat(id int) string {
	return fmt.Sprintf("device.%d.area_coverage.cell.botright.latitude", id)
}

func KeyCellBotRightLon(id int) string {
	return fmt.Sprintf("device.%d.area_coverage.cell.botright.longitude", id)
}

func KeyNextTargetLat(id int) string {
	return fmt.Sprintf("device.%d.area_coverage.target.latitude", id)
}

func KeyNextTargetLon(id int) string {
	return fmt.Sprintf("device.%d.area_coverage.target.longitude", id)
}

// Per-device movement commands, consumed by the movement subsystem.

func KeyDeviceCommand(id int) string { return fmt.Sprintf("device.%d.movement_requested", id) }

func KeyMoveTargetLat(id int) string { return fmt.Sprintf("device.%d.movement.target.latitude", id) }
func KeyMoveTargetLon(id int) string { return fmt.Sprintf("device.%d.movement.target.longitude", id) }
func KeyMoveTargetAlt(id int) string { return fmt.Sprintf("device.%d.movement.target.altitude", id) }

// Search areas reference their region record by id; region records carry the
// actual bounding box. Region ids are allocated by the mission controller's
// monotonic counter, shared between search areas and bridges.

func KeyAreaRegion(areaID int) string { return fmt.Sprintf("area.%d.region", areaID) }

func KeyRegionType(regionID int) string { return fmt.Sprintf("region.%d.type", regionID) }

func KeyRegionTopLeftLat(regionID int) string {
	return fmt.Sprintf("region.%d.topleft.latitude", regionID)
}

func KeyRegionTopLeftLon(regionID int) string {
	return fmt.Sprintf("region.%d.topleft.longitude", regionID)
}

func KeyRegionBotRightLat(regionID int) string {
	return fmt.Sprintf("region.%d.botright.latitude", regionID)
}

func KeyRegionBotRightLon(regionID int) string {
	return fmt.Sprintf("region.%d.botright.longitude", regionID)
}

// Bridges record the region ids of their source and sink relay regions.

func KeyBridgeSourceRegion(bridgeID int) string {
	return fmt.Sprintf("bridge.%d.source_region", bridgeID)
}

func KeyBridgeSinkRegion(bridgeID int) string {
	return fmt.Sprintf("bridge.%d.sink_region", bridgeID)
}

// Detections are replicated as coordinate-encoded keys so that any agent can
// contribute one without coordination; the value is the detection confidence.

const KeyDetectionPrefix = "detection.location."

func KeyDetection(lat, lon float64) string {
	return fmt.Sprintf("%s%s_%s", KeyDetectionPrefix, FormatFloat(lat), FormatFloat(lon))
}
