package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"senseact/internal/config"
	"senseact/internal/model"
)

var updateDBCommand = &cobra.Command{
	Use:   "updatedb",
	Short: "Update database tables",
	Run: func(cmd *cobra.Command, args []string) {
		conf, err := config.InitConfig(configFile)
		if err != nil {
			logrus.Fatal("initConfig error, ", err.Error())
		}

		db, err := model.InitDB(conf.DB)
		if err != nil {
			logrus.Fatal("failed to init database", err)
		}
		defer func() {
			sqlDb, _ := db.DB()
			sqlDb.Close()
		}()

		err = model.AutoMigrate(db)
		if err != nil {
			logrus.Fatal("failed to auto migrate database", err)
		} else {
			logrus.Infof("Database tables update successfully")
		}
	},
}
