package wire

// Opcode identifies the type of a Packet. Values are reproduced bit-exactly
// from the legacy protocol so that unmodified clients interoperate.
type Opcode int16

const (
	OpPublicKeyResponse Opcode = 1
	OpStreamKeyResponse Opcode = 2

	OpAddress         Opcode = 5
	OpAttributes      Opcode = 6
	OpAttributeChange Opcode = 7
	OpAttributesReset Opcode = 8
	OpAvatarAdd       Opcode = 9
	OpAvatarChange    Opcode = 10
	OpAvatarClick     Opcode = 11
	OpAvatarDelete    Opcode = 12

	OpBotgram         Opcode = 14
	OpBotgramResponse Opcode = 15

	OpCapabilities           Opcode = 16
	OpCellBegin              Opcode = 17
	OpCellEnd                Opcode = 18
	OpCellNext               Opcode = 19
	OpCellUpdate             Opcode = 20
	OpCitizenAdd             Opcode = 21
	OpCitizenInfo            Opcode = 22
	OpCitizenLookupByName    Opcode = 23
	OpCitizenLookupByNumber  Opcode = 24
	OpCitizenChange          Opcode = 25
	OpCitizenDelete          Opcode = 26
	OpCitizenNext            Opcode = 27
	OpCitizenPrev            Opcode = 28
	OpCitizenChangeResult    Opcode = 29
	OpConsoleMessage         Opcode = 30
	OpContactAdd             Opcode = 31
	OpContactChange          Opcode = 32
	OpContactDelete          Opcode = 33
	OpContactList            Opcode = 34
	OpEnter                  Opcode = 35

	OpPublicKeyRequest Opcode = 36
	OpHeartbeat        Opcode = 37
	OpIdentify         Opcode = 38
	OpLicenseAdd       Opcode = 39
	OpLicenseResult    Opcode = 40
	OpLicenseByName    Opcode = 41
	OpLicenseChange    Opcode = 42
	OpLicenseDelete    Opcode = 43
	OpLicenseNext      Opcode = 44
	OpLicensePrev      Opcode = 45
	OpLicenseChangeResult Opcode = 46
	OpLogin            Opcode = 47
	OpMessage          Opcode = 48
	OpObjectAdd        Opcode = 49

	OpObjectClick     Opcode = 51
	OpObjectDelete    Opcode = 52
	OpObjectDeleteAll Opcode = 53

	OpObjectResult Opcode = 55
	OpObjectSelect Opcode = 56

	OpQueryNeedMore    Opcode = 59
	OpQueryUpToDate    Opcode = 60
	OpRegistryReload   Opcode = 61
	OpServerLogin      Opcode = 62
	OpWorldServerStart Opcode = 63

	OpServerWorldDelete     Opcode = 67
	OpServerWorldList       Opcode = 68
	OpServerWorldListResult Opcode = 69
	OpServerWorldResult     Opcode = 70

	OpTelegramDeliver Opcode = 75
	OpTelegramGet     Opcode = 76
	OpTelegramNotify  Opcode = 77
	OpTelegramSend    Opcode = 78
	OpTeleport        Opcode = 79
	OpTerrainBegin    Opcode = 80
	OpTerrainChanged  Opcode = 81
	OpTerrainData     Opcode = 82
	OpTerrainDelete   Opcode = 83
	OpTerrainEnd      Opcode = 84
	OpTerrainLoad     Opcode = 85
	OpTerrainNext     Opcode = 86

	OpTerrainSet      Opcode = 88
	OpToolbarClick    Opcode = 89
	OpURL             Opcode = 90
	OpURLClick        Opcode = 91
	OpUserList        Opcode = 92
	OpUserListResult  Opcode = 93
	OpLoginApplication Opcode = 94

	OpWorldList       Opcode = 96
	OpWorldListResult Opcode = 97
	OpWorldLookup     Opcode = 98
	OpWorldStart      Opcode = 99
	OpWorldStop       Opcode = 100
	OpTunnel          Opcode = 101
	OpWorldStatsUpdate Opcode = 102
	OpJoinRequest     Opcode = 103
	OpJoinReply       Opcode = 104
	OpXfer            Opcode = 105
	OpXferReply       Opcode = 106
	OpNoise           Opcode = 107

	OpCamera               Opcode = 109
	OpBotmenu              Opcode = 110
	OpBotmenuResult        Opcode = 111
	OpEjectionInfo         Opcode = 112
	OpEjectAdd             Opcode = 113
	OpEjectDelete          Opcode = 114
	OpEjectLookup          Opcode = 115
	OpEjectNext            Opcode = 116
	OpEjectPrev            Opcode = 117
	OpEjectResult          Opcode = 118
	OpWorldConnectionResult Opcode = 119
	OpObjectBump           Opcode = 120
	OpPasswordSend         Opcode = 121

	OpCavTemplateByNumber       Opcode = 123
	OpCavTemplateNext           Opcode = 124
	OpCavTemplateChange         Opcode = 125
	OpCavTemplateDelete         Opcode = 126
	OpWorldCAVDefinitionChange  Opcode = 127
	OpWorldCAV                  Opcode = 128

	OpCavDelete      Opcode = 130
	OpWorldCAVResult Opcode = 131
	OpMoverAdd       Opcode = 144
	OpMoverDelete    Opcode = 145
	OpMoverChange    Opcode = 146

	OpMoverRiderAdd    Opcode = 148
	OpMoverRiderDelete Opcode = 149
	OpMoverRiderChange Opcode = 150
	OpMoverLinks       Opcode = 151

	OpSetAFK Opcode = 152

	OpImmigrate         Opcode = 155
	OpImmigrateResponse Opcode = 156
	OpRegister          Opcode = 157

	OpAvatarReload     Opcode = 159
	OpWorldInstanceSet Opcode = 160
	OpWorldInstanceGet Opcode = 161

	OpContactConfirm Opcode = 163

	OpHudCreate      Opcode = 164
	OpHudClick       Opcode = 165
	OpHudDestroy     Opcode = 166
	OpHudClear       Opcode = 167
	OpHudResult      Opcode = 168
	OpAvatarLocation Opcode = 169
	OpObjectQuery    Opcode = 170
	OpLaserBeam      Opcode = 183

	// OpCompressed is not a real protocol opcode; it signals a zlib-framed
	// payload in the tag header (opcode = -1).
	OpCompressed Opcode = -1
)

var opcodeNames = map[Opcode]string{
	OpPublicKeyResponse: "PublicKeyResponse", OpStreamKeyResponse: "StreamKeyResponse",
	OpAddress: "Address", OpAttributes: "Attributes", OpAttributeChange: "AttributeChange",
	OpAttributesReset: "AttributesReset", OpAvatarAdd: "AvatarAdd", OpAvatarChange: "AvatarChange",
	OpAvatarClick: "AvatarClick", OpAvatarDelete: "AvatarDelete",
	OpBotgram: "Botgram", OpBotgramResponse: "BotgramResponse",
	OpCapabilities: "Capabilities", OpCellBegin: "CellBegin", OpCellEnd: "CellEnd",
	OpCellNext: "CellNext", OpCellUpdate: "CellUpdate", OpCitizenAdd: "CitizenAdd",
	OpCitizenInfo: "CitizenInfo", OpCitizenLookupByName: "CitizenLookupByName",
	OpCitizenLookupByNumber: "CitizenLookupByNumber", OpCitizenChange: "CitizenChange",
	OpCitizenDelete: "CitizenDelete", OpCitizenNext: "CitizenNext", OpCitizenPrev: "CitizenPrev",
	OpCitizenChangeResult: "CitizenChangeResult", OpConsoleMessage: "ConsoleMessage",
	OpContactAdd: "ContactAdd", OpContactChange: "ContactChange", OpContactDelete: "ContactDelete",
	OpContactList: "ContactList", OpEnter: "Enter",
	OpPublicKeyRequest: "PublicKeyRequest", OpHeartbeat: "Heartbeat", OpIdentify: "Identify",
	OpLicenseAdd: "LicenseAdd", OpLicenseResult: "LicenseResult", OpLicenseByName: "LicenseByName",
	OpLicenseChange: "LicenseChange", OpLicenseDelete: "LicenseDelete", OpLicenseNext: "LicenseNext",
	OpLicensePrev: "LicensePrev", OpLicenseChangeResult: "LicenseChangeResult",
	OpLogin: "Login", OpMessage: "Message", OpObjectAdd: "ObjectAdd",
	OpObjectClick: "ObjectClick", OpObjectDelete: "ObjectDelete", OpObjectDeleteAll: "ObjectDeleteAll",
	OpObjectResult: "ObjectResult", OpObjectSelect: "ObjectSelect",
	OpQueryNeedMore: "QueryNeedMore", OpQueryUpToDate: "QueryUpToDate",
	OpRegistryReload: "RegistryReload", OpServerLogin: "ServerLogin",
	OpWorldServerStart: "WorldServerStart",
	OpServerWorldDelete: "ServerWorldDelete", OpServerWorldList: "ServerWorldList",
	OpServerWorldListResult: "ServerWorldListResult", OpServerWorldResult: "ServerWorldResult",
	OpTelegramDeliver: "TelegramDeliver", OpTelegramGet: "TelegramGet",
	OpTelegramNotify: "TelegramNotify", OpTelegramSend: "TelegramSend", OpTeleport: "Teleport",
	OpTerrainBegin: "TerrainBegin", OpTerrainChanged: "TerrainChanged", OpTerrainData: "TerrainData",
	OpTerrainDelete: "TerrainDelete", OpTerrainEnd: "TerrainEnd", OpTerrainLoad: "TerrainLoad",
	OpTerrainNext: "TerrainNext", OpTerrainSet: "TerrainSet", OpToolbarClick: "ToolbarClick",
	OpURL: "URL", OpURLClick: "URLClick", OpUserList: "UserList", OpUserListResult: "UserListResult",
	OpLoginApplication: "LoginApplication",
	OpWorldList: "WorldList", OpWorldListResult: "WorldListResult", OpWorldLookup: "WorldLookup",
	OpWorldStart: "WorldStart", OpWorldStop: "WorldStop", OpTunnel: "Tunnel",
	OpWorldStatsUpdate: "WorldStatsUpdate", OpJoinRequest: "JoinRequest", OpJoinReply: "JoinReply",
	OpXfer: "Xfer", OpXferReply: "XferReply", OpNoise: "Noise",
	OpCamera: "Camera", OpBotmenu: "Botmenu", OpBotmenuResult: "BotmenuResult",
	OpEjectionInfo: "EjectionInfo", OpEjectAdd: "EjectAdd", OpEjectDelete: "EjectDelete",
	OpEjectLookup: "EjectLookup", OpEjectNext: "EjectNext", OpEjectPrev: "EjectPrev",
	OpEjectResult: "EjectResult", OpWorldConnectionResult: "WorldConnectionResult",
	OpObjectBump: "ObjectBump", OpPasswordSend: "PasswordSend",
	OpCavTemplateByNumber: "CavTemplateByNumber", OpCavTemplateNext: "CavTemplateNext",
	OpCavTemplateChange: "CavTemplateChange", OpCavTemplateDelete: "CavTemplateDelete",
	OpWorldCAVDefinitionChange: "WorldCAVDefinitionChange", OpWorldCAV: "WorldCAV",
	OpCavDelete: "CavDelete", OpWorldCAVResult: "WorldCAVResult",
	OpMoverAdd: "MoverAdd", OpMoverDelete: "MoverDelete", OpMoverChange: "MoverChange",
	OpMoverRiderAdd: "MoverRiderAdd", OpMoverRiderDelete: "MoverRiderDelete",
	OpMoverRiderChange: "MoverRiderChange", OpMoverLinks: "MoverLinks",
	OpSetAFK: "SetAFK", OpImmigrate: "Immigrate", OpImmigrateResponse: "ImmigrateResponse",
	OpRegister: "Register", OpAvatarReload: "AvatarReload", OpWorldInstanceSet: "WorldInstanceSet",
	OpWorldInstanceGet: "WorldInstanceGet", OpContactConfirm: "ContactConfirm",
	OpHudCreate: "HudCreate", OpHudClick: "HudClick", OpHudDestroy: "HudDestroy",
	OpHudClear: "HudClear", OpHudResult: "HudResult", OpAvatarLocation: "AvatarLocation",
	OpObjectQuery: "ObjectQuery", OpLaserBeam: "LaserBeam",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "Unknown"
}

// KnownOpcode reports whether o appears in the protocol's opcode table.
func KnownOpcode(o Opcode) bool {
	_, ok := opcodeNames[o]
	return ok
}
