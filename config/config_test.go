package config_test

import (
	"testing"

	"raftkv/config"
)

func TestMajorityForFiveReplicas(t *testing.T) {
	c := config.New("0001", []string{"0002", "0003", "0004", "0005"})
	if got := c.Majority(); got != 3 {
		t.Errorf("expected majority 3 of 5, got %d", got)
	}
}

func TestMajorityForThreeReplicas(t *testing.T) {
	c := config.New("0001", []string{"0002", "0003"})
	if got := c.Majority(); got != 2 {
		t.Errorf("expected majority 2 of 3, got %d", got)
	}
}

func TestSampledTimersAreWithinBounds(t *testing.T) {
	c := config.New("0001", []string{"0002", "0003", "0004", "0005"})

	if c.ElectionTimeout < config.ElectionTimeoutMin || c.ElectionTimeout >= config.ElectionTimeoutMax {
		t.Errorf("election timeout %v out of [%v, %v)", c.ElectionTimeout, config.ElectionTimeoutMin, config.ElectionTimeoutMax)
	}
	if c.ElectionWindow < config.ElectionWindowMin || c.ElectionWindow >= config.ElectionWindowMax {
		t.Errorf("election window %v out of [%v, %v)", c.ElectionWindow, config.ElectionWindowMin, config.ElectionWindowMax)
	}
}

func TestHeartbeatFasterThanMinimumElectionTimeout(t *testing.T) {
	if config.HeartbeatInterval >= config.ElectionTimeoutMin {
		t.Fatalf("heartbeat interval %v must stay below minimum election timeout %v", config.HeartbeatInterval, config.ElectionTimeoutMin)
	}
}
