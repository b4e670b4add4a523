package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewCharacterStartingLoadout(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")

	if c.Credits() != 1000 {
		t.Errorf("expected 1000 starting credits, got %d", c.Credits())
	}
	if c.ShipFuel != 50 || c.ShipHull != 100 || c.MaxShipHull != 100 {
		t.Errorf("unexpected ship state: fuel=%d hull=%d/%d", c.ShipFuel, c.ShipHull, c.MaxShipHull)
	}
	if !c.IsAlive() {
		t.Error("expected new character alive")
	}
	if c.Alignment() != AlignmentNeutral {
		t.Errorf("expected neutral alignment, got %q", c.Alignment())
	}
	if c.LocationStatus != StatusDocked {
		t.Errorf("expected docked status, got %q", c.LocationStatus)
	}
	if c.Level != 1 || c.Experience != 0 {
		t.Errorf("expected level 1 with no experience, got level=%d xp=%d", c.Level, c.Experience)
	}
	for _, skill := range []string{"piloting", "combat", "trading", "engineering", "diplomacy"} {
		if c.Skills[skill] != 1 {
			t.Errorf("expected starting skill %s at 1, got %d", skill, c.Skills[skill])
		}
	}
	if !c.Validate() {
		t.Error("expected a fresh character to validate")
	}
}

func TestStatModifier(t *testing.T) {
	stats := Stats{Strength: 7, Agility: 14, Intelligence: 15, Charisma: 3, Endurance: 10}

	cases := []struct {
		stat string
		want int
	}{
		{"strength", -2},
		{"agility", 2},
		{"intelligence", 2},
		{"charisma", -4},
		{"endurance", 0},
		{"luck", 0},
	}
	for _, tc := range cases {
		if got := stats.Modifier(tc.stat); got != tc.want {
			t.Errorf("Modifier(%q) = %d, want %d", tc.stat, got, tc.want)
		}
	}
}

func TestMoveToPublishesMoveEvents(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")

	var log eventLog
	log.watch(c.Events(), "current_location_changed", "character_moved")

	if !c.MoveTo(5, 90*time.Second) {
		t.Fatal("expected move to succeed")
	}
	if c.CurrentLocation() != 5 {
		t.Errorf("expected location 5, got %d", c.CurrentLocation())
	}
	if !c.Dirty() {
		t.Error("expected character dirty after moving")
	}

	moved := log.ofType("character_moved")
	if len(moved) != 1 {
		t.Fatalf("expected one character_moved event, got %d", len(moved))
	}
	data := moved[0].Data
	if data["from_location"] != int64(0) || data["to_location"] != int64(5) {
		t.Errorf("unexpected move payload: %v", data)
	}
	if data["travel_time"] != 90*time.Second {
		t.Errorf("expected travel_time 90s, got %v", data["travel_time"])
	}
	if log.count("current_location_changed") != 1 {
		t.Errorf("expected the tracked location change to fire once, got %d", log.count("current_location_changed"))
	}
}

func TestMoveToFailsWhileDead(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")
	c.TakeDamage(100, "asteroid")

	if c.MoveTo(5, time.Minute) {
		t.Error("expected move to fail while dead")
	}
	if c.CurrentLocation() != 0 {
		t.Errorf("expected location unchanged, got %d", c.CurrentLocation())
	}
}

func TestAddCreditsRejectsOverdraft(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")

	var log eventLog
	log.watch(c.Events(), "credits_changed", "major_transaction")

	if c.AddCredits(-1200) {
		t.Error("expected overdraft to fail")
	}
	if c.Credits() != 1000 {
		t.Errorf("expected balance unchanged at 1000, got %d", c.Credits())
	}
	if len(log.events) != 0 {
		t.Errorf("expected no events from a failed withdrawal, got %v", log.types())
	}

	// Spending down to exactly zero is allowed.
	if !c.AddCredits(-1000) {
		t.Error("expected spend to zero to succeed")
	}
	if c.Credits() != 0 {
		t.Errorf("expected zero balance, got %d", c.Credits())
	}
}

func TestAddCreditsMajorTransactionThreshold(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")

	var log eventLog
	log.watch(c.Events(), "major_transaction")

	c.AddCredits(1000)
	if log.count("major_transaction") != 0 {
		t.Error("expected no major_transaction at exactly 1000")
	}

	c.AddCredits(1500)
	major := log.ofType("major_transaction")
	if len(major) != 1 {
		t.Fatalf("expected one major_transaction, got %d", len(major))
	}
	if major[0].Data["amount"] != 1500 || major[0].Data["new_balance"] != 3500 {
		t.Errorf("unexpected payload: %v", major[0].Data)
	}

	c.AddCredits(-1001)
	if log.count("major_transaction") != 2 {
		t.Error("expected a large withdrawal to count as a major transaction")
	}
}

func TestTakeDamageKillsAtZeroHull(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")
	c.MoveTo(3, 0)

	var log eventLog
	log.watch(c.Events(), "damage_taken", "character_died", "is_alive_changed")

	if !c.TakeDamage(40, "pirate") {
		t.Fatal("expected damage to apply")
	}
	if c.ShipHull != 60 {
		t.Errorf("expected hull 60, got %d", c.ShipHull)
	}
	if log.count("character_died") != 0 {
		t.Error("expected character still alive at hull 60")
	}

	c.TakeDamage(200, "pirate")
	if c.ShipHull != 0 {
		t.Errorf("expected hull clamped to 0, got %d", c.ShipHull)
	}
	if c.IsAlive() {
		t.Error("expected character dead at zero hull")
	}
	if c.ShipFuel != 0 {
		t.Errorf("expected fuel drained on death, got %d", c.ShipFuel)
	}
	if c.DeathCount != 1 {
		t.Errorf("expected death_count 1, got %d", c.DeathCount)
	}
	if c.LastDeathTime.IsZero() {
		t.Error("expected last death time recorded")
	}

	died := log.ofType("character_died")
	if len(died) != 1 {
		t.Fatalf("expected one character_died event, got %d", len(died))
	}
	data := died[0].Data
	if data["cause"] != "pirate" || data["death_count"] != 1 {
		t.Errorf("unexpected death payload: %v", data)
	}
	if data["credits_lost"] != 100 {
		t.Errorf("expected 10%% credit penalty of 100, got %v", data["credits_lost"])
	}
	if data["location"] != int64(3) {
		t.Errorf("expected death location 3, got %v", data["location"])
	}
	if c.Credits() != 900 {
		t.Errorf("expected 900 credits after penalty, got %d", c.Credits())
	}

	// The fatal hit reports the damage before the death events.
	wantOrder := []string{"damage_taken", "damage_taken", "is_alive_changed", "character_died"}
	got := log.types()
	if len(got) != len(wantOrder) {
		t.Fatalf("expected events %v, got %v", wantOrder, got)
	}
	for i, want := range wantOrder {
		if got[i] != want {
			t.Fatalf("expected events %v, got %v", wantOrder, got)
		}
	}
}

func TestTakeDamageFailsWhileDead(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")
	c.TakeDamage(100, "mine")

	if c.TakeDamage(10, "mine") {
		t.Error("expected damage to a dead character to fail")
	}
	if c.DeathCount != 1 {
		t.Errorf("expected a single death, got %d", c.DeathCount)
	}
}

func TestHealCapsAtMaxHull(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")
	c.TakeDamage(30, "debris")

	var log eventLog
	log.watch(c.Events(), "healed")

	if healed := c.Heal(50); healed != 30 {
		t.Errorf("expected 30 healed, got %d", healed)
	}
	if c.ShipHull != 100 {
		t.Errorf("expected full hull, got %d", c.ShipHull)
	}

	if healed := c.Heal(10); healed != 0 {
		t.Errorf("expected nothing healed at full hull, got %d", healed)
	}
	if log.count("healed") != 1 {
		t.Errorf("expected one healed event, got %d", log.count("healed"))
	}
}

func TestRespawnRevivesAtHalfHull(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")

	var log eventLog
	log.watch(c.Events(), "character_respawned")

	// Respawn is a no-op while alive.
	c.Respawn(7)
	if log.count("character_respawned") != 0 {
		t.Error("expected no respawn while alive")
	}

	c.TakeDamage(150, "pirate")
	c.Respawn(7)

	if !c.IsAlive() {
		t.Error("expected character alive after respawn")
	}
	if c.ShipHull != 50 {
		t.Errorf("expected half hull 50, got %d", c.ShipHull)
	}
	if c.ShipFuel != 25 {
		t.Errorf("expected respawn fuel 25, got %d", c.ShipFuel)
	}
	if c.CurrentLocation() != 7 {
		t.Errorf("expected respawn location 7, got %d", c.CurrentLocation())
	}
	if c.LocationStatus != StatusDocked {
		t.Errorf("expected docked after respawn, got %q", c.LocationStatus)
	}

	respawned := log.ofType("character_respawned")
	if len(respawned) != 1 {
		t.Fatalf("expected one respawn event, got %d", len(respawned))
	}
	if respawned[0].Data["location"] != int64(7) || respawned[0].Data["death_count"] != 1 {
		t.Errorf("unexpected respawn payload: %v", respawned[0].Data)
	}
}

func TestUpdateAlignmentBuckets(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")

	var log eventLog
	log.watch(c.Events(), "alignment_changed")

	c.UpdateAlignment(30)
	if c.Alignment() != AlignmentNeutral {
		t.Errorf("expected neutral at karma 30, got %q", c.Alignment())
	}
	if len(log.events) != 0 {
		t.Errorf("expected no alignment events inside the neutral band, got %d", len(log.events))
	}

	c.UpdateAlignment(20)
	if c.Karma() != 50 || c.Alignment() != AlignmentLoyal {
		t.Errorf("expected loyal at karma 50, got %q at %d", c.Alignment(), c.Karma())
	}

	// The tracked field change and the bucket transition each publish.
	if len(log.events) != 2 {
		t.Fatalf("expected two alignment_changed events on a bucket change, got %d", len(log.events))
	}
	transition := log.events[1].Data
	if transition["old_alignment"] != "neutral" || transition["new_alignment"] != "loyal" || transition["karma"] != 50 {
		t.Errorf("unexpected transition payload: %v", transition)
	}

	c.UpdateAlignment(-100)
	if c.Karma() != -50 || c.Alignment() != AlignmentBandit {
		t.Errorf("expected bandit at karma -50, got %q at %d", c.Alignment(), c.Karma())
	}
}

func TestAddExperienceAdvancesOneLevelPerCall(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")

	var log eventLog
	log.watch(c.Events(), "level_up")

	// 2500 XP crosses level 1's threshold of 1000 but only one level is
	// granted; the excess carries over.
	c.AddExperience(2500, "piloting")
	if c.Level != 2 {
		t.Errorf("expected level 2, got %d", c.Level)
	}
	if c.Experience != 1500 {
		t.Errorf("expected 1500 carryover XP, got %d", c.Experience)
	}
	if c.Stats.Strength != 11 || c.Stats.Endurance != 11 {
		t.Errorf("expected all stats raised to 11, got %+v", c.Stats)
	}
	if c.Skills["piloting"] != 2 {
		t.Errorf("expected piloting skill 2, got %d", c.Skills["piloting"])
	}

	// The carryover immediately satisfies level 2's threshold of 2000.
	c.AddExperience(500, "")
	if c.Level != 3 || c.Experience != 0 {
		t.Errorf("expected level 3 with 0 XP, got level=%d xp=%d", c.Level, c.Experience)
	}
	if log.count("level_up") != 2 {
		t.Errorf("expected two level_up events, got %d", log.count("level_up"))
	}
}

func TestAddExperienceSkillRules(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")

	// Unknown skills are not created.
	c.AddExperience(10, "cooking")
	if _, ok := c.Skills["cooking"]; ok {
		t.Error("expected unknown skill to stay absent")
	}

	c.Skills["combat"] = 100
	c.AddExperience(10, "combat")
	if c.Skills["combat"] != 100 {
		t.Errorf("expected combat capped at 100, got %d", c.Skills["combat"])
	}
}

func TestAddItemEnforcesWeightLimit(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")

	var log eventLog
	log.watch(c.Events(), "item_added")

	ore := NewItem("iron_ore", "Iron Ore")
	ore.Weight = 30
	ore.Quantity = 3
	if !c.AddItem(ore) {
		t.Fatal("expected 90 units of weight to fit under 100")
	}

	crate := NewItem("crate", "Supply Crate")
	crate.Weight = 20
	if c.AddItem(crate) {
		t.Error("expected a stack pushing weight to 110 to be rejected")
	}
	if c.InventoryWeight() != 90 {
		t.Errorf("expected carried weight 90, got %v", c.InventoryWeight())
	}
	if log.count("item_added") != 1 {
		t.Errorf("expected one item_added event, got %d", log.count("item_added"))
	}
}

func TestAddItemStacksById(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")

	first := NewItem("medkit", "Medkit")
	first.Quantity = 2
	c.AddItem(first)

	var log eventLog
	log.watch(c.Events(), "item_added")

	more := NewItem("medkit", "Medkit")
	more.Quantity = 3
	if !c.AddItem(more) {
		t.Fatal("expected stacking to succeed")
	}

	if len(c.Inventory()) != 1 {
		t.Fatalf("expected a single stack, got %d entries", len(c.Inventory()))
	}
	item := c.ItemByID("medkit")
	if item == nil || item.Quantity != 5 {
		t.Fatalf("expected stacked quantity 5, got %+v", item)
	}

	added := log.ofType("item_added")
	if len(added) != 1 {
		t.Fatalf("expected one item_added event, got %d", len(added))
	}
	if added[0].Data["quantity"] != 3 || added[0].Data["total"] != 5 {
		t.Errorf("unexpected stack payload: %v", added[0].Data)
	}
}

func TestRemoveItem(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")
	medkit := NewItem("medkit", "Medkit")
	medkit.Quantity = 5
	c.AddItem(medkit)

	var log eventLog
	log.watch(c.Events(), "item_removed")

	if !c.RemoveItem("medkit", 2) {
		t.Fatal("expected partial removal to succeed")
	}
	if item := c.ItemByID("medkit"); item == nil || item.Quantity != 3 {
		t.Fatalf("expected 3 remaining, got %+v", item)
	}

	if c.RemoveItem("medkit", 4) {
		t.Error("expected removing more than held to fail")
	}
	if !c.HasItem("medkit", 3) {
		t.Error("expected stack untouched after failed removal")
	}

	if !c.RemoveItem("medkit", 3) {
		t.Fatal("expected exact removal to succeed")
	}
	if c.ItemByID("medkit") != nil {
		t.Error("expected stack removed entirely")
	}
	if c.RemoveItem("medkit", 1) {
		t.Error("expected removal from empty inventory to fail")
	}

	removed := log.ofType("item_removed")
	if len(removed) != 2 {
		t.Fatalf("expected two item_removed events, got %d", len(removed))
	}
	if removed[0].Data["remaining"] != 3 || removed[1].Data["remaining"] != 0 {
		t.Errorf("unexpected removal payloads: %v, %v", removed[0].Data, removed[1].Data)
	}
}

func TestCharacterValidate(t *testing.T) {
	c := NewCharacter("player-1", "Reyes")
	if !c.Validate() {
		t.Fatal("expected valid character")
	}

	c.Name = ""
	if c.Validate() {
		t.Error("expected empty name to fail validation")
	}
	c.Name = "Reyes"

	c.ShipFuel = 101
	if c.Validate() {
		t.Error("expected fuel above 100 to fail validation")
	}
	c.ShipFuel = 50

	c.ShipHull = 150
	if c.Validate() {
		t.Error("expected hull above max to fail validation")
	}
	c.ShipHull = 100

	c.alignment = "chaotic"
	if c.Validate() {
		t.Error("expected unknown alignment to fail validation")
	}
}

func TestCharacterRecordRoundTrip(t *testing.T) {
	c := NewCharacter("player-7", "Vance")
	c.SetID(42)
	c.MoveTo(9, time.Minute)
	c.AddCredits(500)
	c.UpdateAlignment(60)
	c.AddExperience(1200, "trading")
	c.SetWantedLevel(2)
	c.TakeDamage(30, "patrol")
	medkit := NewItem("medkit", "Medkit")
	medkit.Quantity = 2
	medkit.Weight = 0.5
	medkit.Value = 75
	c.AddItem(medkit)

	loaded := CharacterFromRecord(c.ToRecord())

	require.Equal(t, int64(42), loaded.ID())
	require.Equal(t, "player-7", loaded.PlayerRef)
	require.Equal(t, "Vance", loaded.Name)
	require.Equal(t, c.CurrentLocation(), loaded.CurrentLocation())
	require.Equal(t, c.Credits(), loaded.Credits())
	require.Equal(t, c.ShipHull, loaded.ShipHull)
	require.Equal(t, c.Karma(), loaded.Karma())
	require.Equal(t, AlignmentLoyal, loaded.Alignment())
	require.Equal(t, c.WantedLevel(), loaded.WantedLevel())
	require.Equal(t, c.Stats, loaded.Stats)
	require.Equal(t, c.Level, loaded.Level)
	require.Equal(t, c.Experience, loaded.Experience)
	require.Equal(t, c.Skills, loaded.Skills)
	require.True(t, c.CreatedAt().Equal(loaded.CreatedAt()))

	item := loaded.ItemByID("medkit")
	require.NotNil(t, item)
	require.Equal(t, 2, item.Quantity)
	require.Equal(t, 0.5, item.Weight)
	require.Equal(t, 75, item.Value)

	// Loading must not replay change notifications or leave the entity
	// dirty.
	require.False(t, loaded.Dirty())
	require.Empty(t, loaded.Events().History("", 0))
}

func TestCharacterFromRecordDefaults(t *testing.T) {
	loaded := CharacterFromRecord(map[string]any{
		"player_ref": "player-2",
		"name":       "Okafor",
	})

	require.Equal(t, 1000, loaded.Credits())
	require.Equal(t, 50, loaded.ShipFuel)
	require.Equal(t, 100, loaded.MaxShipHull)
	require.True(t, loaded.IsAlive())
	require.Equal(t, AlignmentNeutral, loaded.Alignment())
	require.Equal(t, 1, loaded.Level)
	require.False(t, loaded.Dirty())
}
