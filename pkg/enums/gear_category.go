package enums

import "fmt"

// GearCategory is the top level of the listing taxonomy.
type GearCategory string

const (
	GearCategoryInstrument GearCategory = "instrument"
	GearCategoryAudio      GearCategory = "audio"
	GearCategoryAccessory  GearCategory = "accessory"
	GearCategoryEtc        GearCategory = "etc"
)

var validGearCategories = []GearCategory{
	GearCategoryInstrument,
	GearCategoryAudio,
	GearCategoryAccessory,
	GearCategoryEtc,
}

// String implements fmt.Stringer.
func (c GearCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known GearCategory.
func (c GearCategory) IsValid() bool {
	for _, candidate := range validGearCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseGearCategory converts raw input into a GearCategory.
func ParseGearCategory(value string) (GearCategory, error) {
	for _, candidate := range validGearCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gear category %q", value)
}

// GearCategoryOrder returns the categories in display order.
func GearCategoryOrder() []string {
	return stringsOf(validGearCategories)
}

// GearSubCategory is the middle level of the listing taxonomy.
type GearSubCategory string

const (
	GearSubCategoryGuitar           GearSubCategory = "guitar"
	GearSubCategoryBass             GearSubCategory = "bass"
	GearSubCategoryDrum             GearSubCategory = "drum"
	GearSubCategoryKeyboard         GearSubCategory = "keyboard"
	GearSubCategoryWind             GearSubCategory = "wind"
	GearSubCategoryStringInstrument GearSubCategory = "string_instrument"
	GearSubCategoryEffects          GearSubCategory = "effects"
	GearSubCategoryMixer            GearSubCategory = "mixer"
	GearSubCategoryAmp              GearSubCategory = "amp"
	GearSubCategorySpeaker          GearSubCategory = "speaker"
	GearSubCategoryMonitor          GearSubCategory = "monitor"
	GearSubCategoryAudioInterface   GearSubCategory = "audio_interface"
	GearSubCategoryMicrophone       GearSubCategory = "microphone"
	GearSubCategoryHeadphone        GearSubCategory = "headphone"
	GearSubCategoryIEM              GearSubCategory = "iem"
	GearSubCategoryEarphone         GearSubCategory = "earphone"
	GearSubCategoryCable            GearSubCategory = "cable"
	GearSubCategoryStand            GearSubCategory = "stand"
	GearSubCategoryCase             GearSubCategory = "case"
	GearSubCategoryPick             GearSubCategory = "pick"
	GearSubCategoryStringAccessory  GearSubCategory = "string_accessory"
	GearSubCategoryDrumstick        GearSubCategory = "drumstick"
	GearSubCategoryOther            GearSubCategory = "other"
)

var validGearSubCategories = []GearSubCategory{
	GearSubCategoryGuitar,
	GearSubCategoryBass,
	GearSubCategoryDrum,
	GearSubCategoryKeyboard,
	GearSubCategoryWind,
	GearSubCategoryStringInstrument,
	GearSubCategoryEffects,
	GearSubCategoryMixer,
	GearSubCategoryAmp,
	GearSubCategorySpeaker,
	GearSubCategoryMonitor,
	GearSubCategoryAudioInterface,
	GearSubCategoryMicrophone,
	GearSubCategoryHeadphone,
	GearSubCategoryIEM,
	GearSubCategoryEarphone,
	GearSubCategoryCable,
	GearSubCategoryStand,
	GearSubCategoryCase,
	GearSubCategoryPick,
	GearSubCategoryStringAccessory,
	GearSubCategoryDrumstick,
	GearSubCategoryOther,
}

// String implements fmt.Stringer.
func (c GearSubCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known GearSubCategory.
func (c GearSubCategory) IsValid() bool {
	for _, candidate := range validGearSubCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseGearSubCategory converts raw input into a GearSubCategory.
func ParseGearSubCategory(value string) (GearSubCategory, error) {
	for _, candidate := range validGearSubCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gear sub category %q", value)
}

func GearSubCategoryOrder() []string {
	return stringsOf(validGearSubCategories)
}

// GearDetailCategory is the leaf level of the listing taxonomy.
type GearDetailCategory string

const (
	GearDetailElectric             GearDetailCategory = "electric"
	GearDetailAcoustic             GearDetailCategory = "acoustic"
	GearDetailClassical            GearDetailCategory = "classical"
	GearDetailElectricBass         GearDetailCategory = "electric_bass"
	GearDetailAcousticBass         GearDetailCategory = "acoustic_bass"
	GearDetailUprightBass          GearDetailCategory = "upright_bass"
	GearDetailAcousticDrum         GearDetailCategory = "acoustic_drum"
	GearDetailElectronicDrum       GearDetailCategory = "electronic_drum"
	GearDetailPercussion           GearDetailCategory = "percussion"
	GearDetailPiano                GearDetailCategory = "piano"
	GearDetailSynthesizer          GearDetailCategory = "synthesizer"
	GearDetailMIDI                 GearDetailCategory = "midi"
	GearDetailOrgan                GearDetailCategory = "organ"
	GearDetailSaxophone            GearDetailCategory = "saxophone"
	GearDetailTrumpet              GearDetailCategory = "trumpet"
	GearDetailFlute                GearDetailCategory = "flute"
	GearDetailClarinet             GearDetailCategory = "clarinet"
	GearDetailViolin               GearDetailCategory = "violin"
	GearDetailViola                GearDetailCategory = "viola"
	GearDetailCello                GearDetailCategory = "cello"
	GearDetailMultiEffects         GearDetailCategory = "multi_effects"
	GearDetailPedal                GearDetailCategory = "pedal"
	GearDetailBassEffects          GearDetailCategory = "bass_effects"
	GearDetailAcousticEffects      GearDetailCategory = "acoustic_effects"
	GearDetailPedalboard           GearDetailCategory = "pedalboard"
	GearDetailPowerSupply          GearDetailCategory = "power_supply"
	GearDetailEffectsOther         GearDetailCategory = "effects_other"
	GearDetailMixer                GearDetailCategory = "mixer"
	GearDetailAmp                  GearDetailCategory = "amp"
	GearDetailPreamp               GearDetailCategory = "preamp"
	GearDetailPowerAmp             GearDetailCategory = "power_amp"
	GearDetailPASpeaker            GearDetailCategory = "pa_speaker"
	GearDetailSubwoofer            GearDetailCategory = "subwoofer"
	GearDetailSpeakerSystem        GearDetailCategory = "speaker_system"
	GearDetailMonitor              GearDetailCategory = "monitor"
	GearDetailStudioMonitor        GearDetailCategory = "studio_monitor"
	GearDetailUSBInterface         GearDetailCategory = "usb_interface"
	GearDetailThunderboltInterface GearDetailCategory = "thunderbolt_interface"
	GearDetailPCIeInterface        GearDetailCategory = "pcie_interface"
	GearDetailCondenser            GearDetailCategory = "condenser"
	GearDetailDynamic              GearDetailCategory = "dynamic"
	GearDetailRibbon               GearDetailCategory = "ribbon"
	GearDetailWirelessMic          GearDetailCategory = "wireless_mic"
	GearDetailHeadphone            GearDetailCategory = "headphone"
	GearDetailHeadset              GearDetailCategory = "headset"
	GearDetailIEM                  GearDetailCategory = "iem"
	GearDetailEarphone             GearDetailCategory = "earphone"
	GearDetailInstrumentCable      GearDetailCategory = "instrument_cable"
	GearDetailMicCable             GearDetailCategory = "mic_cable"
	GearDetailSpeakerCable         GearDetailCategory = "speaker_cable"
	GearDetailPatchCable           GearDetailCategory = "patch_cable"
	GearDetailStand                GearDetailCategory = "stand"
	GearDetailCase                 GearDetailCategory = "case"
	GearDetailPick                 GearDetailCategory = "pick"
	GearDetailString               GearDetailCategory = "string"
	GearDetailDrumstick            GearDetailCategory = "drumstick"
	GearDetailOther                GearDetailCategory = "other"
)

var validGearDetailCategories = []GearDetailCategory{
	GearDetailElectric, GearDetailAcoustic, GearDetailClassical,
	GearDetailElectricBass, GearDetailAcousticBass, GearDetailUprightBass,
	GearDetailAcousticDrum, GearDetailElectronicDrum, GearDetailPercussion,
	GearDetailPiano, GearDetailSynthesizer, GearDetailMIDI, GearDetailOrgan,
	GearDetailSaxophone, GearDetailTrumpet, GearDetailFlute, GearDetailClarinet,
	GearDetailViolin, GearDetailViola, GearDetailCello,
	GearDetailMultiEffects, GearDetailPedal, GearDetailBassEffects, GearDetailAcousticEffects,
	GearDetailPedalboard, GearDetailPowerSupply, GearDetailEffectsOther,
	GearDetailMixer,
	GearDetailAmp, GearDetailPreamp, GearDetailPowerAmp,
	GearDetailPASpeaker, GearDetailSubwoofer, GearDetailSpeakerSystem,
	GearDetailMonitor, GearDetailStudioMonitor,
	GearDetailUSBInterface, GearDetailThunderboltInterface, GearDetailPCIeInterface,
	GearDetailCondenser, GearDetailDynamic, GearDetailRibbon, GearDetailWirelessMic,
	GearDetailHeadphone, GearDetailHeadset,
	GearDetailIEM,
	GearDetailEarphone,
	GearDetailInstrumentCable, GearDetailMicCable, GearDetailSpeakerCable, GearDetailPatchCable,
	GearDetailStand,
	GearDetailCase,
	GearDetailPick,
	GearDetailString,
	GearDetailDrumstick,
	GearDetailOther,
}

// String implements fmt.Stringer.
func (c GearDetailCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known GearDetailCategory.
func (c GearDetailCategory) IsValid() bool {
	for _, candidate := range validGearDetailCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseGearDetailCategory converts raw input into a GearDetailCategory.
func ParseGearDetailCategory(value string) (GearDetailCategory, error) {
	for _, candidate := range validGearDetailCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gear detail category %q", value)
}

func GearDetailCategoryOrder() []string {
	return stringsOf(validGearDetailCategories)
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
