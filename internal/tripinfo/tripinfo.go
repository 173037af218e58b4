package tripinfo

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMissingID   = errors.New("missing id")
	ErrMissingType = errors.New("missing vehicle type")
	ErrBadNumber   = errors.New("unparseable numeric attribute")
)

// TripRecord is one completed vehicle trip as logged by the simulator.
// Durations are seconds and lengths meters, exactly as read.
type TripRecord struct {
	ID          string
	Type        string
	Duration    float64
	WaitingTime float64
	RouteLength float64
	TimeLoss    float64
}

func (r TripRecord) TimeLossMinutes() float64    { return r.TimeLoss / 60 }
func (r TripRecord) TravelTimeMinutes() float64  { return r.Duration / 60 }
func (r TripRecord) WaitingTimeMinutes() float64 { return r.WaitingTime / 60 }
func (r TripRecord) RouteLengthKm() float64      { return r.RouteLength / 1000 }

// DelayMinutes is time loss not spent standing still.
func (r TripRecord) DelayMinutes() float64 {
	return (r.TimeLoss - r.WaitingTime) / 60
}

// SpeedKmh is the trip's mean speed. Zero when the duration is not positive.
func (r TripRecord) SpeedKmh() float64 {
	hours := r.Duration / 3600
	if hours <= 0 {
		return 0
	}
	return r.RouteLengthKm() / hours
}

// Entry is the parse outcome of one tripinfo element: either a usable
// record or the reason it was skipped.
type Entry struct {
	Record TripRecord
	Err    error
}

func (e Entry) Skipped() bool { return e.Err != nil }

// ParseTripInfo reads every tripinfo element of a trip-info file. A bad
// element yields a skipped Entry and never fails the file; only I/O and XML
// syntax errors are returned.
func ParseTripInfo(path string) ([]Entry, error) {
	var entries []Entry
	err := decodeFile(path, "tripinfo", func(attrs []xml.Attr) {
		entries = append(entries, parseTrip(attrs))
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func parseTrip(attrs []xml.Attr) Entry {
	id, _ := attr(attrs, "id")
	id = strings.TrimSpace(id)
	vtype := typeAttr(attrs)
	if id == "" {
		return Entry{Err: ErrMissingID}
	}
	if vtype == "" {
		return Entry{Record: TripRecord{ID: id}, Err: ErrMissingType}
	}

	rec := TripRecord{ID: id, Type: NormalizeType(vtype)}
	fields := []struct {
		name string
		dst  *float64
	}{
		{"duration", &rec.Duration},
		{"waitingTime", &rec.WaitingTime},
		{"routeLength", &rec.RouteLength},
		{"timeLoss", &rec.TimeLoss},
	}
	for _, f := range fields {
		raw, ok := attr(attrs, f.name)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Entry{Record: TripRecord{ID: id, Type: rec.Type}, Err: fmt.Errorf("%s=%q: %w", f.name, raw, ErrBadNumber)}
		}
		*f.dst = v
	}
	return Entry{Record: rec}
}

// ParseVehicleIDs returns the ids of every vehicle element in a
// vehicle-route file.
func ParseVehicleIDs(path string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	err := decodeFile(path, "vehicle", func(attrs []xml.Attr) {
		if id, _ := attr(attrs, "id"); strings.TrimSpace(id) != "" {
			ids[strings.TrimSpace(id)] = struct{}{}
		}
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
