package tables

// These tables are in their own file because they are large.
// None of them are ever modified after init.

import (
	"fmt"
	"sort"

	"essdump/types"
)

type FormType int

type Forminfo struct {
	Code  string // 4-letter record code, as in the master files
	Name  string // script-visible name, often empty
	Class string // engine class, often empty
}

// A few that get referred to by name
const (
	FT_NONE FormType = 0
	FT_NPC  FormType = 45
	FT_CELL FormType = 62
	FT_REFR FormType = 63
	FT_ACHR FormType = 64
	FT_QUST FormType = 79
)

var forms = map[FormType]Forminfo{
	0:   {"NONE", "", ""},
	1:   {"TES4", "", ""},
	2:   {"GRUP", "", ""},
	3:   {"GMST", "", ""},
	4:   {"KYWD", "Keyword", "BGSKeyword"},
	5:   {"LCRT", "LocationRefType", "BGSLocationRefType"},
	6:   {"AACT", "Action", "BGSAction"},
	7:   {"TXST", "", "BGSTextureSet"},
	8:   {"MICN", "", "BGSMenuIcon"},
	9:   {"GLOB", "GlobalVariable", "TESGlobal"},
	10:  {"CLAS", "Class", "TESClass"},
	11:  {"FACT", "Faction", "TESFaction"},
	12:  {"HDPT", "", "BGSHeadPart"},
	13:  {"HAIR", "", "TESHair"},
	14:  {"EYES", "", "TESEyes"},
	15:  {"RACE", "Race", "TESRace"},
	16:  {"SOUN", "Sound", "TESSound"},
	17:  {"ASPC", "", "BGSAcousticSpace"},
	18:  {"SKIL", "", ""},
	19:  {"MGEF", "MagicEffect", "EffectSetting"},
	20:  {"SCPT", "", "Script"},
	21:  {"LTEX", "", "TESLandTexture"},
	22:  {"ENCH", "Enchantment", "EnchantmentItem"},
	23:  {"SPEL", "Spell", "SpellItem"},
	24:  {"SCRL", "Scroll", "ScrollItem"},
	25:  {"ACTI", "Activator", "TESObjectACTI"},
	26:  {"TACT", "TalkingActivator", "BGSTalkingActivator"},
	27:  {"ARMO", "Armor", "TESObjectARMO"},
	28:  {"BOOK", "Book", "TESObjectBOOK"},
	29:  {"CONT", "Container", "TESObjectCONT"},
	30:  {"DOOR", "Door", "TESObjectDOOR"},
	31:  {"INGR", "Ingredient", "IngredientItem"},
	32:  {"LIGH", "Light", "TESObjectLIGH"},
	33:  {"MISC", "MiscObject", "TESObjectMISC"},
	34:  {"APPA", "Apparatus", "BGSApparatus"},
	35:  {"STAT", "Static", "TESObjectSTAT"},
	36:  {"SCOL", "", "BGSStaticCollection"},
	37:  {"MSTT", "", "BGSMovableStatic"},
	38:  {"GRAS", "", "TESGrass"},
	39:  {"TREE", "", "TESObjectTREE"},
	40:  {"CLDC", "", "BGSCloudClusterForm"},
	41:  {"FLOR", "Flora", "TESFlora"},
	42:  {"FURN", "Furniture", "TESFurniture"},
	43:  {"WEAP", "Weapon", "TESObjectWEAP"},
	44:  {"AMMO", "Ammo", "TESAmmo"},
	45:  {"NPC_", "ActorBase", "TESNPC"},
	46:  {"LVLN", "LeveledActor", "TESLevCharacter"},
	47:  {"KEYM", "Key", "TESKey"},
	48:  {"ALCH", "Potion", "AlchemyItem"},
	49:  {"IDLM", "", "BGSIdleMarker"},
	50:  {"NOTE", "", "BGSNote"},
	51:  {"COBJ", "ConstructibleObject", "BGSConstructibleObject"},
	52:  {"PROJ", "Projectile", "BGSProjectile"},
	53:  {"HAZD", "Hazard", "BGSHazard"},
	54:  {"SLGM", "SoulGem", "TESSoulGem"},
	55:  {"LVLI", "LeveledItem", "TESLevItem"},
	56:  {"WTHR", "Weather", "TESWeather"},
	57:  {"CLMT", "", "TESClimate"},
	58:  {"SPGD", "ShaderParticleGeometry", "BGSShaderParticleGeometryData"},
	59:  {"RFCT", "VisualEffect", "BGSReferenceEffect"},
	60:  {"REGN", "", "TESRegion"},
	61:  {"NAVI", "", ""},
	62:  {"CELL", "Cell", "TESObjectCELL"},
	63:  {"REFR", "ObjectReference", ""},
	64:  {"ACHR", "Actor", ""},
	65:  {"PMIS", "", ""},
	66:  {"PARW", "", ""},
	67:  {"PGRE", "", ""},
	68:  {"PBEA", "", ""},
	69:  {"PFLA", "", ""},
	70:  {"PCON", "", ""},
	71:  {"PBAR", "", ""},
	72:  {"PHZD", "", ""},
	73:  {"WRLD", "WorldSpace", "TESWorldSpace"},
	74:  {"LAND", "", "TESObjectLAND"},
	75:  {"NAVM", "", "NavMesh"},
	76:  {"TLOD", "", ""},
	77:  {"DIAL", "Topic", "TESTopic"},
	78:  {"INFO", "TopicInfo", "TESTopicInfo"},
	79:  {"QUST", "Quest", "TESQuest"},
	80:  {"IDLE", "Idle", "TESIdleForm"},
	81:  {"PACK", "Package", ""},
	82:  {"CSTY", "", "TESCombatStyle"},
	83:  {"LSCR", "", "TESLoadScreen"},
	84:  {"LVSP", "LeveledSpell", "TESLevSpell"},
	85:  {"ANIO", "", "TESObjectANIO"},
	86:  {"WATR", "", "TESWaterForm"},
	87:  {"EFSH", "EffectShader", "TESEffectShader"},
	88:  {"TOFT", "", ""},
	89:  {"EXPL", "Explosion", "BGSExplosion"},
	90:  {"DEBR", "", "BGSDebris"},
	91:  {"IMGS", "", "TESImageSpace"},
	92:  {"IMAD", "ImageSpaceModifier", "TESImageSpaceModifier"},
	93:  {"FLST", "FormList", "BGSListForm"},
	94:  {"PERK", "Perk", "BGSPerk"},
	95:  {"BPTD", "", "BGSBodyPartData"},
	96:  {"ADDN", "", "BGSAddonNode"},
	97:  {"AVIF", "", ""},
	98:  {"CAMS", "", "BGSCameraShot"},
	99:  {"CPTH", "", "BGSCameraPath"},
	100: {"VTYP", "VoiceType", "BGSVoiceType"},
	101: {"MATT", "", "BGSMaterialType"},
	102: {"IPCT", "", "BGSImpactData"},
	103: {"IPDS", "ImpactDataSet", "BGSImpactDataSet"},
	104: {"ARMA", "", "TESObjectARMA"},
	105: {"ECZN", "EncounterZone", "BGSEncounterZone"},
	106: {"LCTN", "Location", "BGSLocation"},
	107: {"MESG", "Message", "BGSMessage"},
	108: {"RGDL", "", "BGSRagdoll"},
	109: {"DOBJ", "", ""},
	110: {"LGTM", "", "BGSLightingTemplate"},
	111: {"MUSC", "MusicType", "BGSMusicType"},
	112: {"FSTP", "", "BGSFootstep"},
	113: {"FSTS", "", "BGSFootstepSet"},
	114: {"SMBN", "", "BGSStoryManagerBranchNode"},
	115: {"SMQN", "", "BGSStoryManagerQuestNode"},
	116: {"SMEN", "", "BGSStoryManagerEventNode"},
	117: {"DBLR", "", "BGSDialogueBranch"},
	118: {"MUST", "", "BGSMusicTrackFormWrapper"},
	119: {"DLVW", "", ""},
	120: {"WOOP", "WordOfPower", "TESWordOfPower"},
	121: {"SHOU", "Shout", "TESShout"},
	122: {"EQUP", "", "BGSEquipSlot"},
	123: {"RELA", "", "BGSRelationship"},
	124: {"SCEN", "Scene", "BGSScene"},
	125: {"ASTP", "AssociationType", "BGSAssociationType"},
	126: {"OTFT", "Outfit", "BGSOutfit"},
	127: {"ARTO", "", "BGSArtObject"},
	128: {"MATO", "", "BGSMaterialObject"},
	129: {"MOVT", "", "BGSMovementType"},
	130: {"SNDR", "", "BGSSoundDescriptorForm"},
	131: {"DUAL", "", "BGSDualCastData"},
	132: {"SNCT", "SoundCategory", "BGSSoundCategory"},
	133: {"SOPM", "", "BGSSoundOutput"},
	134: {"COLL", "", "BGSCollisionLayer"},
	135: {"CLFM", "", "BGSColorForm"},
	136: {"REVB", "", "BGSReverbParameters"},
	// No record codes for these, they only exist at runtime
	138: {"", "Alias", ""},
	139: {"", "ReferenceAlias", ""},
	140: {"", "LocationAlias", ""},
	141: {"", "ActiveMagicEffect", ""},
}

func (ft FormType) String() string {
	info, ok := forms[ft]
	if !ok {
		return fmt.Sprintf("Unknown (%v)", int(ft))
	}
	if info.Code == "" {
		return info.Name
	}
	return info.Code
}

// Change records don't use the form type directly; they use a 6-bit code
// which maps onto a subset of form types.
var savegame_to_form = map[uint8]FormType{
	0:  63,  // REFR
	1:  64,  // ACHR
	2:  65,  // PMIS
	3:  67,  // PGRE
	4:  68,  // PBEA
	5:  69,  // PFLA
	6:  62,  // CELL
	7:  78,  // INFO
	8:  79,  // QUST
	9:  45,  // NPC_
	10: 25,  // ACTI
	11: 26,  // TACT
	12: 27,  // ARMO
	13: 28,  // BOOK
	14: 29,  // CONT
	15: 30,  // DOOR
	16: 31,  // INGR
	17: 32,  // LIGH
	18: 33,  // MISC
	19: 34,  // APPA
	20: 35,  // STAT
	21: 37,  // MSTT
	22: 42,  // FURN
	23: 43,  // WEAP
	24: 44,  // AMMO
	25: 47,  // KEYM
	26: 48,  // ALCH
	27: 49,  // IDLM
	28: 50,  // NOTE
	29: 105, // ECZN
	30: 10,  // CLAS
	31: 11,  // FACT
	32: 81,  // PACK
	33: 75,  // NAVM
	34: 120, // WOOP
	35: 19,  // MGEF
	36: 115, // SMQN
	37: 124, // SCEN
	38: 106, // LCTN
	39: 123, // RELA
	40: 72,  // PHZD
	41: 71,  // PBAR
	42: 70,  // PCON
	43: 93,  // FLST
	44: 46,  // LVLN
	45: 55,  // LVLI
	46: 84,  // LVSP
	47: 66,  // PARW
	48: 22,  // ENCH
}

var form_to_savegame = func() map[FormType]uint8 {
	m := map[FormType]uint8{}
	for k, v := range savegame_to_form {
		m[v] = k
	}
	return m
}()

// Form_type translates a change record type code into a form type
func Form_type(code uint8) (FormType, error) {
	ft, ok := savegame_to_form[code]
	if !ok {
		return FT_NONE, fmt.Errorf("change record type code %v: %w", code, types.ErrUnknownFormType)
	}
	return ft, nil
}

// Savegame_code is the inverse of Form_type
func Savegame_code(ft FormType) (uint8, error) {
	code, ok := form_to_savegame[ft]
	if !ok {
		return 0, fmt.Errorf("form type %v has no change record code: %w", ft, types.ErrUnknownFormType)
	}
	return code, nil
}

// Form_type_by_code finds a form type from its 4-letter code (or runtime name, for the ones without)
func Form_type_by_code(code string) (FormType, bool) {
	for ft, info := range forms {
		if info.Code == code || (info.Code == "" && info.Name == code) {
			return ft, true
		}
	}
	return FT_NONE, false
}

var stat_categories = []string{"General", "Quest", "Combat", "Magic", "Crafting", "Crime"}

func Stat_category(c uint8) string {
	if int(c) < len(stat_categories) {
		return stat_categories[c]
	}
	return "Unknown"
}

// Global data block types.  Names are also the keys of the global data tables.
const (
	BT_MISC_STATS       = 0
	BT_PLAYER_LOCATION  = 1
	BT_TES              = 2
	BT_GLOBAL_VARIABLES = 3
)

var block_names = map[uint32]string{
	0:    "Misc Stats",
	1:    "Player Location",
	2:    "Tes",
	3:    "Global Variables",
	4:    "Created Objects",
	5:    "Effects",
	6:    "Weather",
	7:    "Audio",
	8:    "SkyCells",
	100:  "Process Lists",
	101:  "Combat",
	102:  "Interface",
	103:  "Actor Causes",
	104:  "Detection Manager",
	105:  "Location Metadata",
	106:  "Quest Static Data",
	107:  "StoryTeller",
	108:  "Magic Favorites",
	109:  "PlayerControls",
	110:  "Story Event Manager",
	111:  "Ingredient Shared",
	112:  "Menu Controls",
	113:  "MenuTopicManager",
	114:  "Unknown 114",
	1000: "Temp Effects",
	1001: "Papyrus",
	1002: "Anim Objects",
	1003: "Timer",
	1004: "Synchronized Animations",
	1005: "Main",
}

// Block_types lists the block types with a known name, in order.  The slice is the caller's to keep.
func Block_types() []uint32 {
	out := make([]uint32, 0, len(block_names))
	for t := range block_names {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Block_name never fails; types we've never heard of get a made-up name
func Block_name(t uint32) string {
	name, ok := block_names[t]
	if !ok {
		return fmt.Sprintf("Unknown %v", t)
	}
	return name
}
