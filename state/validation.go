package state

import (
	"fmt"
	"regexp"
	"slices"
	"time"
)

var namePattern, _ = regexp.Compile("^[0-9a-z._-]+$")

func IdValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid id, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func RouterNameValidator(n Name) error {
	if !n.Valid() {
		return fmt.Errorf("%q is not a valid hierarchical name", string(n))
	}
	return nil
}

func HelloConfigValidator(h *HelloCfg) error {
	if h.ProbeInterval < 30*time.Second || h.ProbeInterval > 90*time.Second {
		return fmt.Errorf("hello.probe_interval %v outside valid range [30s, 90s]", h.ProbeInterval)
	}
	if h.ProbeLifetime < time.Second || h.ProbeLifetime > 15*time.Second {
		return fmt.Errorf("hello.probe_lifetime %v outside valid range [1s, 15s]", h.ProbeLifetime)
	}
	if h.RetryLimit < 1 || h.RetryLimit > 10 {
		return fmt.Errorf("hello.retry_limit %d outside valid range [1, 10]", h.RetryLimit)
	}
	if h.HistoryCapacity < 3 || h.HistoryCapacity > 100 {
		return fmt.Errorf("hello.history_capacity %d outside valid range [3, 100]", h.HistoryCapacity)
	}
	cm := &h.CostModel
	if cm.RttWeight < 0 || cm.LoadWeight < 0 || cm.StabilityWeight < 0 {
		return fmt.Errorf("hello.cost_model weights must not be negative")
	}
	if cm.ClampMin <= 0 || cm.ClampMin > 1 {
		return fmt.Errorf("hello.cost_model.clamp_min %v outside valid range (0, 1]", cm.ClampMin)
	}
	if cm.ClampMax < 1 {
		return fmt.Errorf("hello.cost_model.clamp_max %v must be at least 1", cm.ClampMax)
	}
	return nil
}

func NodeConfigValidator(node *LocalCfg) error {
	return IdValidator(string(node.Id))
}

func CentralConfigValidator(cfg *CentralCfg) error {
	seenNames := make([]Name, 0, len(cfg.Routers))
	for _, router := range cfg.Routers {
		if err := IdValidator(string(router.Id)); err != nil {
			return err
		}
		if err := RouterNameValidator(router.Name); err != nil {
			return fmt.Errorf("router %s: %w", router.Id, err)
		}
		if slices.Contains(seenNames, router.Name) {
			return fmt.Errorf("duplicate router name: %s", router.Name)
		}
		seenNames = append(seenNames, router.Name)
		if router.Cost < 0 {
			return fmt.Errorf("router %s: cost must not be negative", router.Id)
		}
	}
	allNodes := make([]string, 0, len(cfg.Routers))
	for _, router := range cfg.Routers {
		allNodes = append(allNodes, string(router.Id))
	}
	if _, err := ParseGraph(cfg.Graph, allNodes); err != nil {
		return err
	}
	return HelloConfigValidator(&cfg.Hello)
}
