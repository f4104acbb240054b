package ui

import "fmt"

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeySearch            = "search"
	KeyDownloads         = "downloads"
	KeyLibrary           = "library"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeySearchPlaceholder = "search_placeholder"
	KeyTypeAll           = "type_all"
	KeyTypeSongs         = "type_songs"
	KeyTypeAlbums        = "type_albums"
	KeyTypeArtists       = "type_artists"
	KeyDownload          = "download"
	KeyDetails           = "details"
	KeyNoResults         = "no_results"
	KeySearching         = "searching"
	KeySearchFailed      = "search_failed"
	KeyTaskAdded         = "task_added"
	KeyAlreadyInQueue    = "already_in_queue"
	KeyAddFailed         = "add_failed"
	KeyCancel            = "cancel"
	KeyRetry             = "retry"
	KeyOpenFolder        = "open_folder"
	KeyOpenFile          = "open_file"
	KeyRemove            = "remove"
	KeyClearFinished     = "clear_finished"
	KeyCancelAll         = "cancel_all"
	KeyDownloadCompleted = "download_completed"
	KeyDownloadFailed    = "download_failed"
	KeyScan              = "scan"
	KeyScanning          = "scanning"
	KeyScanDone          = "scan_done"
	KeyFilter            = "filter"
	KeyOpenDownloads     = "open_downloads"
	KeyOpenLogFile       = "open_log_file"
	KeyClearCache        = "clear_cache"
	KeyCacheCleared      = "cache_cleared"
	KeySelectAll         = "select_all"
	KeySelectNone        = "select_none"
	KeyTracksSelected    = "tracks_selected"
	KeyLoadingDetails    = "loading_details"
	KeyOnline            = "online"
	KeyOffline           = "offline"
	KeySave              = "save"
	KeyBrowse            = "browse"
	KeySettingsSaved     = "settings_saved"
	KeyDownloadDirectory = "download_directory"
	KeyThreads           = "threads"
	KeyFormat            = "format"
	KeyAudioQuality      = "audio_quality"
	KeyAutoRename        = "auto_rename"
	KeyUseAlbumFolders   = "use_album_folders"
	KeyNormalizeAudio    = "normalize_audio"
	KeyEmbedLyrics       = "embed_lyrics"
	KeyNotifyOnComplete  = "notify_on_complete"
	KeyCheckDuplicates   = "check_duplicates"
	KeyMaxCacheSize      = "max_cache_size"
	KeyAccentColor       = "accent_color"
	KeySearchLimit       = "search_limit"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyFilterAll         = "filter_all"
	KeyFilterActive      = "filter_active"
	KeyFilterWaiting     = "filter_waiting"
	KeyFilterCompleted   = "filter_completed"
	KeyFilterFailed      = "filter_failed"
	KeyColumnArtist      = "col_artist"
	KeyColumnTitle       = "col_title"
	KeyColumnAlbum       = "col_album"
	KeyColumnLength      = "col_length"
	KeyError             = "error"
	KeyAbout             = "about"
	KeyAboutText         = "about_text"
	KeyShow              = "show"
	KeyQuit              = "quit"
	KeyQuitConfirm       = "quit_confirm"
	KeyTrayActive        = "tray_active"
	KeyMinimizedToTray   = "minimized_to_tray"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. Unknown languages are ignored.
func (l *Localization) SetLanguage(lang string) {
	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if text, found := l.texts["en"][key]; found {
		return text
	}

	return key
}

// Format returns the localized text for key formatted with args
func (l *Localization) Format(key string, args ...interface{}) string {
	return fmt.Sprintf(l.GetText(key), args...)
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "MP3ME",
		KeySearch:            "Search",
		KeyDownloads:         "Downloads",
		KeyLibrary:           "Library",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeySearchPlaceholder: "Search songs, albums, artists or paste a YouTube Music URL",
		KeyTypeAll:           "All",
		KeyTypeSongs:         "Songs",
		KeyTypeAlbums:        "Albums",
		KeyTypeArtists:       "Artists",
		KeyDownload:          "Download",
		KeyDetails:           "Details",
		KeyNoResults:         "No results",
		KeySearching:         "Searching...",
		KeySearchFailed:      "Search failed",
		KeyTaskAdded:         "Added to queue: %s",
		KeyAlreadyInQueue:    "Already in queue",
		KeyAddFailed:         "Could not add download",
		KeyCancel:            "Cancel",
		KeyRetry:             "Retry",
		KeyOpenFolder:        "Folder",
		KeyOpenFile:          "Play",
		KeyRemove:            "Remove",
		KeyClearFinished:     "Clear finished",
		KeyCancelAll:         "Cancel all",
		KeyDownloadCompleted: "Download completed",
		KeyDownloadFailed:    "Download failed",
		KeyScan:              "Scan",
		KeyScanning:          "Scanning %d/%d",
		KeyScanDone:          "%d tracks in library",
		KeyFilter:            "Filter by title, artist or album",
		KeyOpenDownloads:     "Open downloads folder",
		KeyOpenLogFile:       "Open log file",
		KeyClearCache:        "Clear artwork cache",
		KeyCacheCleared:      "Artwork cache cleared",
		KeySelectAll:         "Select all",
		KeySelectNone:        "Select none",
		KeyTracksSelected:    "%d of %d tracks selected",
		KeyLoadingDetails:    "Loading tracks...",
		KeyOnline:            "Online",
		KeyOffline:           "Offline, downloads paused",
		KeySave:              "Save",
		KeyBrowse:            "Browse",
		KeySettingsSaved:     "Settings saved",
		KeyDownloadDirectory: "Download directory",
		KeyThreads:           "Parallel downloads",
		KeyFormat:            "Format",
		KeyAudioQuality:      "Audio quality",
		KeyAutoRename:        "Name files \"Artist - Title\"",
		KeyUseAlbumFolders:   "Artist/Album folders",
		KeyNormalizeAudio:    "Normalize loudness",
		KeyEmbedLyrics:       "Embed lyrics",
		KeyNotifyOnComplete:  "Notify when done",
		KeyCheckDuplicates:   "Skip duplicates",
		KeyMaxCacheSize:      "Artwork cache (MB)",
		KeyAccentColor:       "Accent color",
		KeySearchLimit:       "Results per type",
		KeyErrorOpeningFile:  "Error opening file",
		KeyFilterAll:         "All",
		KeyFilterActive:      "Active",
		KeyFilterWaiting:     "Waiting",
		KeyFilterCompleted:   "Completed",
		KeyFilterFailed:      "Failed",
		KeyColumnArtist:      "Artist",
		KeyColumnTitle:       "Title",
		KeyColumnAlbum:       "Album",
		KeyColumnLength:      "Length",
		KeyError:             "Error",
		KeyAbout:             "About",
		KeyAboutText:         "%s %s\nPowered by yt-dlp",
		KeyShow:              "Show",
		KeyQuit:              "Quit",
		KeyQuitConfirm:       "There are active downloads. Quit and cancel them?",
		KeyTrayActive:        "Downloads: %d active",
		KeyMinimizedToTray:   "Minimized to the system tray. Downloads continue in the background.",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "MP3ME",
		KeySearch:            "Поиск",
		KeyDownloads:         "Загрузки",
		KeyLibrary:           "Библиотека",
		KeySettings:          "Настройки",
		KeyFile:              "Файл",
		KeyLanguage:          "Язык",
		KeySearchPlaceholder: "Ищите песни, альбомы, исполнителей или вставьте ссылку YouTube Music",
		KeyTypeAll:           "Все",
		KeyTypeSongs:         "Песни",
		KeyTypeAlbums:        "Альбомы",
		KeyTypeArtists:       "Исполнители",
		KeyDownload:          "Скачать",
		KeyDetails:           "Подробнее",
		KeyNoResults:         "Ничего не найдено",
		KeySearching:         "Поиск...",
		KeySearchFailed:      "Ошибка поиска",
		KeyTaskAdded:         "Добавлено в очередь: %s",
		KeyAlreadyInQueue:    "Уже в очереди",
		KeyAddFailed:         "Не удалось добавить загрузку",
		KeyCancel:            "Отмена",
		KeyRetry:             "Повторить",
		KeyOpenFolder:        "Папка",
		KeyOpenFile:          "Слушать",
		KeyRemove:            "Удалить",
		KeyClearFinished:     "Очистить завершённые",
		KeyCancelAll:         "Отменить все",
		KeyDownloadCompleted: "Загрузка завершена",
		KeyDownloadFailed:    "Ошибка загрузки",
		KeyScan:              "Сканировать",
		KeyScanning:          "Сканирование %d/%d",
		KeyScanDone:          "Треков в библиотеке: %d",
		KeyFilter:            "Фильтр по названию, исполнителю или альбому",
		KeyOpenDownloads:     "Открыть папку загрузок",
		KeyOpenLogFile:       "Открыть журнал",
		KeyClearCache:        "Очистить кэш обложек",
		KeyCacheCleared:      "Кэш обложек очищен",
		KeySelectAll:         "Выбрать все",
		KeySelectNone:        "Снять выбор",
		KeyTracksSelected:    "Выбрано треков: %d из %d",
		KeyLoadingDetails:    "Загрузка треков...",
		KeyOnline:            "В сети",
		KeyOffline:           "Нет сети, загрузки приостановлены",
		KeySave:              "Сохранить",
		KeyBrowse:            "Обзор",
		KeySettingsSaved:     "Настройки сохранены",
		KeyDownloadDirectory: "Папка загрузки",
		KeyThreads:           "Параллельных загрузок",
		KeyFormat:            "Формат",
		KeyAudioQuality:      "Качество звука",
		KeyAutoRename:        "Имена файлов \"Исполнитель - Название\"",
		KeyUseAlbumFolders:   "Папки Исполнитель/Альбом",
		KeyNormalizeAudio:    "Нормализовать громкость",
		KeyEmbedLyrics:       "Встраивать тексты",
		KeyNotifyOnComplete:  "Уведомлять о завершении",
		KeyCheckDuplicates:   "Пропускать дубликаты",
		KeyMaxCacheSize:      "Кэш обложек (МБ)",
		KeyAccentColor:       "Акцентный цвет",
		KeySearchLimit:       "Результатов на тип",
		KeyErrorOpeningFile:  "Ошибка открытия файла",
		KeyFilterAll:         "Все",
		KeyFilterActive:      "Активные",
		KeyFilterWaiting:     "Ожидают",
		KeyFilterCompleted:   "Завершённые",
		KeyFilterFailed:      "С ошибкой",
		KeyColumnArtist:      "Исполнитель",
		KeyColumnTitle:       "Название",
		KeyColumnAlbum:       "Альбом",
		KeyColumnLength:      "Длительность",
		KeyError:             "Ошибка",
		KeyAbout:             "О программе",
		KeyAboutText:         "%s %s\nРаботает на yt-dlp",
		KeyShow:              "Показать",
		KeyQuit:              "Выход",
		KeyQuitConfirm:       "Есть активные загрузки. Выйти и отменить их?",
		KeyTrayActive:        "Загрузки: %d активных",
		KeyMinimizedToTray:   "Свёрнуто в системный трей. Загрузки продолжаются в фоне.",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:          "MP3ME",
		KeySearch:            "Buscar",
		KeyDownloads:         "Downloads",
		KeyLibrary:           "Biblioteca",
		KeySettings:          "Configurações",
		KeyFile:              "Arquivo",
		KeyLanguage:          "Idioma",
		KeySearchPlaceholder: "Busque músicas, álbuns, artistas ou cole um link do YouTube Music",
		KeyTypeAll:           "Tudo",
		KeyTypeSongs:         "Músicas",
		KeyTypeAlbums:        "Álbuns",
		KeyTypeArtists:       "Artistas",
		KeyDownload:          "Baixar",
		KeyDetails:           "Detalhes",
		KeyNoResults:         "Nenhum resultado",
		KeySearching:         "Buscando...",
		KeySearchFailed:      "Falha na busca",
		KeyTaskAdded:         "Adicionado à fila: %s",
		KeyAlreadyInQueue:    "Já na fila",
		KeyAddFailed:         "Não foi possível adicionar o download",
		KeyCancel:            "Cancelar",
		KeyRetry:             "Tentar novamente",
		KeyOpenFolder:        "Pasta",
		KeyOpenFile:          "Tocar",
		KeyRemove:            "Remover",
		KeyClearFinished:     "Limpar concluídos",
		KeyCancelAll:         "Cancelar todos",
		KeyDownloadCompleted: "Download concluído",
		KeyDownloadFailed:    "Falha no download",
		KeyScan:              "Escanear",
		KeyScanning:          "Escaneando %d/%d",
		KeyScanDone:          "%d faixas na biblioteca",
		KeyFilter:            "Filtrar por título, artista ou álbum",
		KeyOpenDownloads:     "Abrir pasta de downloads",
		KeyOpenLogFile:       "Abrir arquivo de log",
		KeyClearCache:        "Limpar cache de capas",
		KeyCacheCleared:      "Cache de capas limpo",
		KeySelectAll:         "Selecionar tudo",
		KeySelectNone:        "Limpar seleção",
		KeyTracksSelected:    "%d de %d faixas selecionadas",
		KeyLoadingDetails:    "Carregando faixas...",
		KeyOnline:            "Online",
		KeyOffline:           "Offline, downloads pausados",
		KeySave:              "Salvar",
		KeyBrowse:            "Navegar",
		KeySettingsSaved:     "Configurações salvas",
		KeyDownloadDirectory: "Diretório de download",
		KeyThreads:           "Downloads paralelos",
		KeyFormat:            "Formato",
		KeyAudioQuality:      "Qualidade de áudio",
		KeyAutoRename:        "Nomear arquivos \"Artista - Título\"",
		KeyUseAlbumFolders:   "Pastas Artista/Álbum",
		KeyNormalizeAudio:    "Normalizar volume",
		KeyEmbedLyrics:       "Incorporar letras",
		KeyNotifyOnComplete:  "Notificar ao concluir",
		KeyCheckDuplicates:   "Ignorar duplicados",
		KeyMaxCacheSize:      "Cache de capas (MB)",
		KeyAccentColor:       "Cor de destaque",
		KeySearchLimit:       "Resultados por tipo",
		KeyErrorOpeningFile:  "Erro ao abrir arquivo",
		KeyFilterAll:         "Todos",
		KeyFilterActive:      "Ativos",
		KeyFilterWaiting:     "Aguardando",
		KeyFilterCompleted:   "Concluídos",
		KeyFilterFailed:      "Com erro",
		KeyColumnArtist:      "Artista",
		KeyColumnTitle:       "Título",
		KeyColumnAlbum:       "Álbum",
		KeyColumnLength:      "Duração",
		KeyError:             "Erro",
		KeyAbout:             "Sobre",
		KeyAboutText:         "%s %s\nBaseado no yt-dlp",
		KeyShow:              "Mostrar",
		KeyQuit:              "Sair",
		KeyQuitConfirm:       "Há downloads ativos. Sair e cancelá-los?",
		KeyTrayActive:        "Downloads: %d ativos",
		KeyMinimizedToTray:   "Minimizado na bandeja do sistema. Os downloads continuam em segundo plano.",
	}
}
