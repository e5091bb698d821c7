package clientmqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownTopic   = errors.New("unknown topic")
	ErrUnknownFixture = errors.New("unknown fixture")
	ErrBadPayload     = errors.New("bad payload")
)

// handle routes one message below the topic prefix to its target.
func (c *ClientMQTT) handle(topic string, payload []byte) error {
	rest, ok := strings.CutPrefix(topic, c.cfgClient.TopicPrefix+"/")
	if !ok {
		return ErrUnknownTopic
	}
	parts := strings.Split(rest, "/")

	switch {
	case parts[0] == "fixture" && len(parts) >= 3:
		return c.handleFixture(parts[1], parts[2:], payload)
	case rest == "grandmaster":
		v, err := parseNumber(payload)
		if err != nil {
			return err
		}
		c.targets.Grandmaster.SetGrandmaster(v)
		c.targets.Fixtures.ReapplyAllStates()
		return nil
	case rest == "blackout":
		c.targets.Fixtures.BlackoutAll()
		return nil
	case rest == "fx/color":
		return c.handleColorFX(payload)
	case rest == "fx/move":
		return c.handleMoveFX(payload)
	}
	return ErrUnknownTopic
}

func (c *ClientMQTT) handleFixture(id string, action []string, payload []byte) error {
	f := c.targets.Fixtures
	if !f.Exists(id) {
		return fmt.Errorf("%w: %s", ErrUnknownFixture, id)
	}

	switch {
	case action[0] == "color" && len(action) == 1:
		var p ColorPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		f.SetFixtureColor(id, p.R, p.G, p.B, p.W)
	case action[0] == "dimmer" && len(action) == 1:
		v, err := parseNumber(payload)
		if err != nil {
			return err
		}
		f.SetFixtureDimmer(id, v, true)
	case action[0] == "channel" && len(action) == 2:
		v, err := parseNumber(payload)
		if err != nil {
			return err
		}
		f.SetFixtureChannel(id, action[1], v)
	case action[0] == "position" && len(action) == 1:
		var p PositionPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			// plain "front"
			p.Name = strings.Trim(strings.TrimSpace(string(payload)), `"`)
		}
		if p.Pan != nil && p.Tilt != nil {
			f.SetPanTilt(id, *p.Pan, *p.Tilt)
			return nil
		}
		if p.Name == "" {
			return fmt.Errorf("%w: position needs a name or pan and tilt", ErrBadPayload)
		}
		f.SetFixturePosition(id, p.Name)
	default:
		return ErrUnknownTopic
	}
	return nil
}

func (c *ClientMQTT) handleColorFX(payload []byte) error {
	var cmd ColorFXCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	defer c.PublishStatus()

	fx := c.targets.Color
	if cmd.BPM != nil {
		fx.SetBPM(*cmd.BPM)
	}
	if cmd.Fade != nil {
		fx.SetFadePercentage(*cmd.Fade)
	}
	switch cmd.Effect {
	case "":
		return nil
	case "stop":
		fx.Stop()
		return nil
	}
	return fx.Start(cmd.Effect)
}

func (c *ClientMQTT) handleMoveFX(payload []byte) error {
	var cmd MoveFXCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	defer c.PublishStatus()

	fx := c.targets.Move
	if cmd.BPM != nil {
		fx.SetBPM(*cmd.BPM)
	}
	if cmd.Size != nil {
		fx.SetSize(*cmd.Size)
	}
	if cmd.Phase != nil {
		fx.SetPhase(*cmd.Phase)
	}
	if cmd.Speed != nil {
		fx.SetSpeed(*cmd.Speed)
	}
	if cmd.CenterPan != nil || cmd.CenterTilt != nil {
		st := fx.Status()
		pan, tilt := st.CenterPan, st.CenterTilt
		if cmd.CenterPan != nil {
			pan = *cmd.CenterPan
		}
		if cmd.CenterTilt != nil {
			tilt = *cmd.CenterTilt
		}
		fx.SetCenter(pan, tilt)
	}
	switch cmd.Effect {
	case "":
		return nil
	case "stop":
		fx.Stop()
		return nil
	}
	return fx.Start(cmd.Effect)
}

// parseNumber accepts 0.5, "0.5" or {"value":0.5}.
func parseNumber(payload []byte) (float64, error) {
	var v float64
	if err := json.Unmarshal(payload, &v); err == nil {
		return v, nil
	}
	var obj struct {
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(payload, &obj); err == nil && obj.Value != nil {
		return *obj.Value, nil
	}
	s := strings.Trim(strings.TrimSpace(string(payload)), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: not a number: %q", ErrBadPayload, payload)
	}
	return v, nil
}
