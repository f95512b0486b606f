package wire

// VarID identifies a packet variable's meaning.
type VarID uint16

const (
	VarVolumeSerial VarID = 6

	VarIdentifyUserIP VarID = 26

	VarPositionNorth    VarID = 36
	VarPositionHeight   VarID = 37
	VarPositionRotation VarID = 38
	VarPositionWest     VarID = 39

	VarBotgramFromCitizenNumber VarID = 40
	VarBotgramFromUsername      VarID = 41
	VarBotgramMessage           VarID = 42
	VarBotgramCitizenNumber     VarID = 43
	VarBotgramType              VarID = 44

	VarBetaUser                           VarID = 50
	VarCitizenBotLimit                     VarID = 51
	VarCitizenComment                      VarID = 52
	VarCitizenEmail                        VarID = 53
	VarCitizenEnabled                      VarID = 54
	VarCitizenExpiration                   VarID = 55
	VarCitizenImmigration                  VarID = 56
	VarCitizenLastLogin                    VarID = 57
	VarCitizenName                         VarID = 58
	VarCitizenNumber                       VarID = 59
	VarCitizenPassword                      VarID = 60
	VarCitizenPrivilegePassword            VarID = 61
	VarCitizenRemainingTimeUntilExpiration VarID = 62
	VarCitizenTotalTime                    VarID = 63
	VarCitizenURL                          VarID = 64
	VarUserType                            VarID = 67
	VarBrowserBuild                        VarID = 68
	VarContactListMore                     VarID = 74
	VarContactListName                     VarID = 75
	VarContactListCitizenID                VarID = 76
	VarContactListOptions                  VarID = 77
	VarContactListStatus                   VarID = 78
	VarContactListWorld                    VarID = 79
	VarEncryptionKey                       VarID = 80
	VarWorldLicenseComment                 VarID = 81
	VarWorldLicenseCreation                VarID = 82
	VarWorldLicenseEmail                   VarID = 83
	VarWorldLicenseExpiration              VarID = 84
	VarWorldLicenseHidden                  VarID = 85
	VarWorldLicenseLastAddress             VarID = 86
	VarWorldLicenseLastStart               VarID = 87
	VarWorldName                           VarID = 88
	VarWorldLicenseID                      VarID = 89
	VarWorldLicensePassword                VarID = 90
	VarWorldLicenseRange                   VarID = 91
	VarWorldLicenseTourists                VarID = 92
	VarWorldLicenseUsers                   VarID = 93
	VarApplication                         VarID = 94
	VarEmail                               VarID = 95
	VarLoginUsername                       VarID = 96
	VarLoginID                             VarID = 97
	VarPassword                            VarID = 98
	VarPrivilegeUsername                   VarID = 99
	VarPrivilegeUserID                     VarID = 100
	VarPrivilegePassword                   VarID = 101
	VarPlayerPort                          VarID = 120
	VarReasonCode                          VarID = 121
	VarSessionID                           VarID = 140
	VarTelegramCitizenName                 VarID = 141
	VarTelegramMessage                     VarID = 142
	VarTelegramsMoreRemain                 VarID = 143
	VarTelegramAge                         VarID = 144
	VarTelegramTo                          VarID = 145
	VarUniverseLicense                     VarID = 171
	VarUserListAddress                     VarID = 176
	VarUserListCitizenID                   VarID = 177
	VarUserListEmailAddress                VarID = 178
	VarUserListID                          VarID = 180
	VarUserListMore                        VarID = 181
	VarUserListName                        VarID = 182
	VarUserListPrivilegeID                 VarID = 183
	VarUserListContinuationID              VarID = 184
	VarUserListState                       VarID = 185
	VarUserListWorldName                   VarID = 186
	VarWorldFreeEntry                      VarID = 187
	VarWorldAddress                        VarID = 188
	VarWorldBuild                          VarID = 189
	VarWorldUserNonce                      VarID = 190
	VarWorldPort                           VarID = 191
	VarWorldRating                         VarID = 192
	VarWorldListMore                       VarID = 193
	VarWorldListName                       VarID = 194
	VarWorldListRating                     VarID = 195
	VarWorldList3DayUnknown                VarID = 196
	VarWorldListStatus                     VarID = 197
	VarWorldListUsers                      VarID = 198
	VarWorldUsers                          VarID = 201
	VarBrowserVersion                      VarID = 211
	VarEjectionAddress                     VarID = 216
	VarEjectionCreation                    VarID = 217
	VarEjectionExpiration                  VarID = 218
	VarEjectionComment                     VarID = 219
	VarCAVEnabled                          VarID = 226
	VarCAVTemplate                         VarID = 227
	VarAFKStatus                           VarID = 261
	VarWorldLicenseVoip                    VarID = 263
	VarWorldLicensePlugins                 VarID = 264
	VarCitizenPrivacy                      VarID = 301
	VarTrialUser                           VarID = 302
)
