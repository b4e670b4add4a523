package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/thexant/galaxygame/internal/entity"
)

// NPCPersonality shapes dialogue and trade prices.
type NPCPersonality string

const (
	PersonalityFriendly   NPCPersonality = "friendly"
	PersonalityNeutral    NPCPersonality = "neutral"
	PersonalityHostile    NPCPersonality = "hostile"
	PersonalityMysterious NPCPersonality = "mysterious"
	PersonalityMerchant   NPCPersonality = "merchant"
	PersonalityGuard      NPCPersonality = "guard"
	PersonalityCriminal   NPCPersonality = "criminal"
	PersonalityScientist  NPCPersonality = "scientist"
	PersonalityPilot      NPCPersonality = "pilot"
)

// NPCOccupation determines a static NPC's trade specialty and stock.
type NPCOccupation string

const (
	OccupationTrader     NPCOccupation = "trader"
	OccupationBartender  NPCOccupation = "bartender"
	OccupationMechanic   NPCOccupation = "mechanic"
	OccupationDoctor     NPCOccupation = "doctor"
	OccupationSecurity   NPCOccupation = "security"
	OccupationMiner      NPCOccupation = "miner"
	OccupationSmuggler   NPCOccupation = "smuggler"
	OccupationPilot      NPCOccupation = "pilot"
	OccupationResearcher NPCOccupation = "researcher"
	OccupationMercenary  NPCOccupation = "mercenary"
)

// TradeGood is an item a static NPC offers for trade.
type TradeGood struct {
	ItemID    string
	Name      string
	BasePrice int
	Quantity  int
	Category  string
	Rarity    string
}

func (g *TradeGood) toRecord() entity.Record {
	return entity.Record{
		"item_id":    g.ItemID,
		"name":       g.Name,
		"base_price": g.BasePrice,
		"quantity":   g.Quantity,
		"category":   g.Category,
		"rarity":     g.Rarity,
	}
}

func tradeGoodFromRecord(rec entity.Record) *TradeGood {
	good := &TradeGood{
		ItemID:    rec.Str("item_id"),
		Name:      rec.Str("name"),
		BasePrice: rec.Int("base_price"),
		Quantity:  rec.Int("quantity"),
		Category:  "general",
		Rarity:    "common",
	}
	if v := rec.Str("category"); v != "" {
		good.Category = v
	}
	if v := rec.Str("rarity"); v != "" {
		good.Rarity = v
	}
	return good
}

// TradeOffer pairs a good with its price as quoted to a specific player.
type TradeOffer struct {
	Good  *TradeGood
	Price int
}

// NPC carries the state shared by static and dynamic NPCs. Life state, hit
// points, and alignment are tracked fields.
type NPC struct {
	entity.Base

	Name string
	Age  int

	alignment Alignment
	hp        int
	alive     bool

	MaxHP        int
	CombatRating int
	Credits      int
}

func newNPC(name string, age int, alignment Alignment) NPC {
	return NPC{
		Name:         name,
		Age:          age,
		alignment:    alignment,
		hp:           100,
		alive:        true,
		MaxHP:        100,
		CombatRating: 5,
		Credits:      100 + rand.Intn(901),
	}
}

// HP returns the current hit points.
func (n *NPC) HP() int { return n.hp }

// IsAlive reports whether the NPC is alive.
func (n *NPC) IsAlive() bool { return n.alive }

// Alignment returns the NPC's alignment.
func (n *NPC) Alignment() Alignment { return n.alignment }

// SetAlignment changes the NPC's alignment, publishing a change event when
// the value differs.
func (n *NPC) SetAlignment(alignment Alignment) {
	entity.SetField(&n.Base, "alignment", &n.alignment, alignment)
}

func (n *NPC) setHP(hp int) {
	entity.SetField(&n.Base, "hp", &n.hp, hp)
}

func (n *NPC) setAlive(alive bool) {
	entity.SetField(&n.Base, "is_alive", &n.alive, alive)
}

// TakeDamage applies damage. Fails while dead. Hit points reaching zero
// kills the NPC.
func (n *NPC) TakeDamage(damage int) bool {
	if !n.alive {
		return false
	}

	n.setHP(max(0, n.hp-damage))

	if n.hp <= 0 {
		n.setAlive(false)
		n.Events().Publish("npc_died", map[string]any{
			"npc_name": n.Name,
			"npc_id":   n.ID(),
		})
	}

	return true
}

// Heal restores hit points up to the maximum and returns the amount healed.
func (n *NPC) Heal(amount int) int {
	if !n.alive {
		return 0
	}

	oldHP := n.hp
	n.setHP(min(n.MaxHP, n.hp+amount))
	return n.hp - oldHP
}

func (n *NPC) validateCore() bool {
	if n.hp < 0 || n.hp > n.MaxHP {
		return false
	}
	switch n.alignment {
	case AlignmentLoyal, AlignmentNeutral, AlignmentBandit:
	default:
		return false
	}
	return true
}

func (n *NPC) coreRecord() entity.Record {
	rec := n.BaseRecord()
	rec["name"] = n.Name
	rec["age"] = n.Age
	rec["alignment"] = string(n.alignment)
	rec["hp"] = n.hp
	rec["max_hp"] = n.MaxHP
	rec["combat_rating"] = n.CombatRating
	rec["is_alive"] = n.alive
	rec["credits"] = n.Credits
	return rec
}

func (n *NPC) applyCoreRecord(rec entity.Record) {
	if rec.Has("hp") {
		n.hp = rec.Int("hp")
	}
	if rec.Has("max_hp") {
		n.MaxHP = rec.Int("max_hp")
	}
	if rec.Has("combat_rating") {
		n.CombatRating = rec.Int("combat_rating")
	}
	if rec.Has("is_alive") {
		n.alive = rec.Bool("is_alive")
	}
	if rec.Has("credits") {
		n.Credits = rec.Int("credits")
	}
}

type occupationConfig struct {
	tradeSpecialty string
	inventorySize  int
}

var occupationConfigs = map[NPCOccupation]occupationConfig{
	OccupationTrader:    {"general_goods", 10},
	OccupationBartender: {"information", 5},
	OccupationMechanic:  {"ship_parts", 8},
	OccupationDoctor:    {"medical_supplies", 6},
	OccupationSmuggler:  {"illegal_goods", 4},
}

type goodTemplate struct {
	itemID   string
	name     string
	price    int
	category string
}

var specialtyGoods = map[string][]goodTemplate{
	"general_goods": {
		{"food_ration", "Food Ration", 10, "consumable"},
		{"water_purifier", "Water Purifier", 50, "tool"},
		{"basic_toolkit", "Basic Toolkit", 100, "tool"},
		{"energy_cell", "Energy Cell", 30, "component"},
	},
	"ship_parts": {
		{"hull_plating", "Hull Plating", 200, "ship_component"},
		{"engine_booster", "Engine Booster", 500, "ship_upgrade"},
		{"shield_generator", "Shield Generator", 800, "ship_component"},
		{"fuel_injector", "Fuel Injector", 300, "ship_component"},
	},
	"medical_supplies": {
		{"medkit", "Medkit", 75, "medical"},
		{"stimpak", "Stimpak", 150, "medical"},
		{"antidote", "Antidote", 100, "medical"},
		{"trauma_kit", "Trauma Kit", 300, "medical"},
	},
	"illegal_goods": {
		{"contraband_data", "Contraband Data", 1000, "illegal"},
		{"weapon_mod", "Illegal Weapon Mod", 600, "illegal"},
		{"forged_permit", "Forged Permit", 400, "illegal"},
		{"encrypted_chip", "Encrypted Chip", 800, "illegal"},
	},
}

// StaticNPC stays at one location, holding trade goods, dialogue, and
// per-player reputation.
type StaticNPC struct {
	NPC

	LocationID     int64
	Occupation     NPCOccupation
	Personality    NPCPersonality
	TradeSpecialty string

	dialogueState string

	tradeGoods      []*TradeGood
	PriceModifier   float64
	lastRestock     time.Time
	restockInterval time.Duration

	reputation map[string]int
}

// NewStaticNPC creates a location-bound NPC and stocks it according to its
// occupation.
func NewStaticNPC(name string, age int, alignment Alignment, locationID int64, occupation NPCOccupation, personality NPCPersonality) *StaticNPC {
	if occupation == "" {
		occupation = OccupationTrader
	}
	if personality == "" {
		personality = PersonalityNeutral
	}

	n := &StaticNPC{
		NPC:             newNPC(name, age, alignment),
		LocationID:      locationID,
		Occupation:      occupation,
		Personality:     personality,
		dialogueState:   "greeting",
		PriceModifier:   1.0,
		lastRestock:     time.Now(),
		restockInterval: 24 * time.Hour,
		reputation:      make(map[string]int),
	}

	cfg, ok := occupationConfigs[occupation]
	if !ok {
		cfg = occupationConfig{tradeSpecialty: "general_goods", inventorySize: 5}
	}
	n.TradeSpecialty = cfg.tradeSpecialty
	n.generateTradeGoods(cfg.inventorySize)

	n.Base = entity.NewBase(n)
	return n
}

func (n *StaticNPC) generateTradeGoods(numItems int) {
	templates, ok := specialtyGoods[n.TradeSpecialty]
	if !ok {
		templates = specialtyGoods["general_goods"]
	}

	for i := 0; i < min(numItems, len(templates)); i++ {
		tpl := templates[i]
		rarity := "rare"
		if tpl.price < 100 {
			rarity = "common"
		} else if tpl.price < 500 {
			rarity = "uncommon"
		}
		n.tradeGoods = append(n.tradeGoods, &TradeGood{
			ItemID:    tpl.itemID,
			Name:      tpl.name,
			BasePrice: tpl.price,
			Quantity:  1 + rand.Intn(10),
			Category:  tpl.category,
			Rarity:    rarity,
		})
	}
}

// GenerateDialogue produces a contextual greeting from the NPC's
// personality, the player's alignment, and the NPC's occupation.
func (n *StaticNPC) GenerateDialogue(playerKarma int, playerAlignment Alignment) string {
	greetings := n.personalityGreetings()
	dialogue := greetings[rand.Intn(len(greetings))]

	if n.alignment == playerAlignment {
		dialogue += " I can tell we think alike."
	} else if (n.alignment == AlignmentLoyal && playerAlignment == AlignmentBandit) ||
		(n.alignment == AlignmentBandit && playerAlignment == AlignmentLoyal) {
		dialogue += " Though I'm not sure I trust your type."
	}

	switch n.Occupation {
	case OccupationBartender:
		dialogue += " Pull up a seat and I'll pour you a drink."
	case OccupationMechanic:
		dialogue += " Your ship looking a bit worse for wear?"
	case OccupationDoctor:
		dialogue += " You look like you could use a check-up."
	case OccupationPilot:
		dialogue += " Looking for fast transport?"
	case OccupationSmuggler:
		dialogue += " ...assuming you can keep a secret."
	}

	return dialogue
}

func (n *StaticNPC) personalityGreetings() []string {
	switch n.Personality {
	case PersonalityFriendly:
		return []string{
			fmt.Sprintf("Welcome, friend! I'm %s. How can I help you today?", n.Name),
			fmt.Sprintf("Good to see a new face! The name's %s.", n.Name),
			"Always happy to meet fellow travelers!",
		}
	case PersonalityHostile:
		return []string{
			"What do you want?",
			"Make it quick, I don't have all day.",
			fmt.Sprintf("You better not be wasting %s's time.", n.Name),
		}
	case PersonalityMysterious:
		return []string{
			"Ah, another seeker of... unusual items?",
			fmt.Sprintf("They call me %s. But names are just labels, aren't they?", n.Name),
			"You have the look of someone searching for something...",
		}
	case PersonalityMerchant:
		return []string{
			fmt.Sprintf("%s's Goods - finest quality in the sector!", n.Name),
			"Welcome to my humble shop! Everything's negotiable.",
			"Buying or selling? I deal in both!",
		}
	default:
		return []string{
			fmt.Sprintf("Name's %s. What do you need?", n.Name),
			"Looking for something specific?",
			"State your business.",
		}
	}
}

// OfferTrade returns the goods in stock with prices quoted for the given
// player reputation. Stock restocks first if the restock interval has
// elapsed since the last restock.
func (n *StaticNPC) OfferTrade(playerCredits, playerReputation int, now time.Time) []TradeOffer {
	if !n.alive {
		return nil
	}

	if now.Sub(n.lastRestock) > n.restockInterval {
		n.restockGoods(now)
	}

	var offers []TradeOffer
	for _, good := range n.tradeGoods {
		if good.Quantity > 0 {
			offers = append(offers, TradeOffer{Good: good, Price: n.calculatePrice(good, playerReputation)})
		}
	}
	return offers
}

func (n *StaticNPC) calculatePrice(good *TradeGood, playerReputation int) int {
	// Reputation saturates at plus or minus 20% at plus or minus 100
	repModifier := 1.0 - float64(playerReputation)/500.0

	personalityModifier := 1.0
	switch n.Personality {
	case PersonalityFriendly:
		personalityModifier = 0.95
	case PersonalityMerchant:
		personalityModifier = 1.0
	case PersonalityHostile:
		personalityModifier = 1.15
	case PersonalityMysterious:
		personalityModifier = 1.1
	}

	rarityModifier := 1.0
	switch good.Rarity {
	case "uncommon":
		rarityModifier = 1.3
	case "rare":
		rarityModifier = 1.8
	case "legendary":
		rarityModifier = 2.5
	}

	price := int(float64(good.BasePrice) * repModifier * personalityModifier * rarityModifier * n.PriceModifier)
	return max(1, price)
}

// CompleteTrade settles a transaction: buying deducts from stock, selling
// adds to it. Fails on unknown goods or insufficient stock.
func (n *StaticNPC) CompleteTrade(itemID string, quantity int, isBuying bool) bool {
	for _, good := range n.tradeGoods {
		if good.ItemID != itemID {
			continue
		}
		if isBuying && good.Quantity >= quantity {
			good.Quantity -= quantity
			return true
		}
		if !isBuying {
			good.Quantity += quantity
			return true
		}
	}
	return false
}

func (n *StaticNPC) restockGoods(now time.Time) {
	for _, good := range n.tradeGoods {
		// Random restock between 50% and 150% of the base stock of 5
		good.Quantity = int(5 * (0.5 + rand.Float64()))
	}
	n.lastRestock = now

	n.Events().Publish("npc_restocked", map[string]any{
		"npc_name":  n.Name,
		"specialty": n.TradeSpecialty,
	})
}

// TradeGoods returns the NPC's stock list.
func (n *StaticNPC) TradeGoods() []*TradeGood {
	return append([]*TradeGood(nil), n.tradeGoods...)
}

// TradeGoodByID returns the stocked good with the given item id, or nil.
func (n *StaticNPC) TradeGoodByID(itemID string) *TradeGood {
	for _, good := range n.tradeGoods {
		if good.ItemID == itemID {
			return good
		}
	}
	return nil
}

// UpdateReputation shifts the NPC's reputation with a player, clamped to
// [-100, 100], and returns the new value.
func (n *StaticNPC) UpdateReputation(playerRef string, change int) int {
	n.reputation[playerRef] = max(-100, min(100, n.reputation[playerRef]+change))
	return n.reputation[playerRef]
}

// Reputation returns the NPC's reputation with a player, zero by default.
func (n *StaticNPC) Reputation(playerRef string) int {
	return n.reputation[playerRef]
}

// DialogueState returns the current dialogue state.
func (n *StaticNPC) DialogueState() string { return n.dialogueState }

// Validate checks structural and range invariants.
func (n *StaticNPC) Validate() bool {
	if !n.validateCore() {
		return false
	}
	switch n.Personality {
	case PersonalityFriendly, PersonalityNeutral, PersonalityHostile,
		PersonalityMysterious, PersonalityMerchant, PersonalityGuard,
		PersonalityCriminal, PersonalityScientist, PersonalityPilot:
	default:
		return false
	}
	if n.Occupation != "" {
		switch n.Occupation {
		case OccupationTrader, OccupationBartender, OccupationMechanic,
			OccupationDoctor, OccupationSecurity, OccupationMiner,
			OccupationSmuggler, OccupationPilot, OccupationResearcher,
			OccupationMercenary:
		default:
			return false
		}
	}
	return true
}

// ToRecord returns a complete snapshot of the NPC, including restock and
// price bookkeeping so trade state survives a round trip.
func (n *StaticNPC) ToRecord() entity.Record {
	goods := make([]entity.Record, 0, len(n.tradeGoods))
	for _, good := range n.tradeGoods {
		goods = append(goods, good.toRecord())
	}

	reputation := make(map[string]int, len(n.reputation))
	for ref, score := range n.reputation {
		reputation[ref] = score
	}

	rec := n.coreRecord()
	rec["location_id"] = n.LocationID
	rec["occupation"] = string(n.Occupation)
	rec["personality"] = string(n.Personality)
	rec["trade_specialty"] = n.TradeSpecialty
	rec["trade_goods"] = goods
	rec["reputation_data"] = reputation
	rec["price_modifier"] = n.PriceModifier
	rec["last_restock"] = n.lastRestock.Format(time.RFC3339Nano)
	return rec
}

// StaticNPCFromRecord rebuilds a static NPC from a snapshot. The result is
// clean and publishes no events.
func StaticNPCFromRecord(rec entity.Record) *StaticNPC {
	alignment := AlignmentNeutral
	if v := rec.Str("alignment"); v != "" {
		alignment = Alignment(v)
	}
	age := 30
	if rec.Has("age") {
		age = rec.Int("age")
	}

	n := NewStaticNPC(
		rec.Str("name"),
		age,
		alignment,
		rec.Int64("location_id"),
		NPCOccupation(rec.Str("occupation")),
		NPCPersonality(rec.Str("personality")),
	)
	n.applyCoreRecord(rec)

	if v := rec.Str("trade_specialty"); v != "" {
		n.TradeSpecialty = v
	}
	if rec.Has("trade_goods") {
		n.tradeGoods = nil
		for _, goodRec := range rec.Records("trade_goods") {
			n.tradeGoods = append(n.tradeGoods, tradeGoodFromRecord(goodRec))
		}
	}
	if rec.Has("reputation_data") {
		n.reputation = rec.IntMap("reputation_data")
	}
	if rec.Has("price_modifier") {
		n.PriceModifier = rec.Float("price_modifier")
	}
	if t := rec.Time("last_restock"); !t.IsZero() {
		n.lastRestock = t
	}

	n.ApplyBaseRecord(rec)
	return n
}
